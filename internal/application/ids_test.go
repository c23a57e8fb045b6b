package application

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_Unique(t *testing.T) {
	gen := UUIDGenerator{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := gen.NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("NewID() = %q is not a UUID: %v", id, err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestSystemClock_UTCMicroseconds(t *testing.T) {
	now := SystemClock{}.Now()
	if now.Location().String() != "UTC" {
		t.Errorf("location = %s, want UTC", now.Location())
	}
	if now.Nanosecond()%1000 != 0 {
		t.Errorf("nanoseconds = %d, want microsecond precision", now.Nanosecond())
	}
}
