package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

func record(id string) *domain.Record {
	return &domain.Record{
		ID:        domain.CaseID(id),
		Result:    ai.Result{Summary: "summary " + id, SOAPNote: &ai.SOAPNote{Assessment: "a"}},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC),
	}
}

func TestCaseRepository_PutGet(t *testing.T) {
	repo := NewCaseRepository()
	ctx := context.Background()

	t.Run("stores and returns a copy", func(t *testing.T) {
		rec := record("c1")
		if err := repo.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		rec.Summary = "mutated after put"

		got, err := repo.Get(ctx, "c1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Summary != "summary c1" {
			t.Errorf("Summary = %q, store shares memory with caller", got.Summary)
		}
		got.SOAPNote.Assessment = "mutated after get"
		again, _ := repo.Get(ctx, "c1")
		if again.SOAPNote.Assessment != "a" {
			t.Errorf("Assessment = %q, store shares memory with reader", again.SOAPNote.Assessment)
		}
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := repo.Put(ctx, record("c1"))
		if !errors.Is(err, domain.ErrDuplicateCase) {
			t.Fatalf("Put() error = %v, want ErrDuplicateCase", err)
		}
	})

	t.Run("missing id is not created by lookup", func(t *testing.T) {
		before := repo.Len()
		_, err := repo.Get(ctx, "CASE-DOES-NOT-EXIST")
		if !errors.Is(err, domain.ErrCaseNotFound) {
			t.Fatalf("Get() error = %v, want ErrCaseNotFound", err)
		}
		if repo.Len() != before {
			t.Errorf("Len() = %d, want %d", repo.Len(), before)
		}
	})
}

func TestCaseRepository_ConcurrentPutSameID(t *testing.T) {
	repo := NewCaseRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, dup := 0, 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Put(ctx, record("same"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrDuplicateCase):
				dup++
			default:
				t.Errorf("Put() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || dup != 49 {
		t.Fatalf("ok = %d, dup = %d, want 1 and 49", ok, dup)
	}
}

func TestCaseRepository_ConcurrentDistinctIDs(t *testing.T) {
	repo := NewCaseRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("case-%d", i)
			if err := repo.Put(ctx, record(id)); err != nil {
				t.Errorf("Put(%s) error = %v", id, err)
				return
			}
			if _, err := repo.Get(ctx, domain.CaseID(id)); err != nil {
				t.Errorf("Get(%s) error = %v", id, err)
			}
		}(i)
	}
	wg.Wait()
	if repo.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", repo.Len())
	}
}
