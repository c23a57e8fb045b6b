package mysql

import (
	"errors"
	"fmt"
	"testing"

	driver "github.com/go-sql-driver/mysql"
)

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate entry", &driver.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'PRIMARY'"}, true},
		{"wrapped", fmt.Errorf("exec: %w", &driver.MySQLError{Number: 1062}), true},
		{"other mysql error", &driver.MySQLError{Number: 1146}, false},
		{"plain error", errors.New("Duplicate entry"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicate(tt.err); got != tt.want {
				t.Errorf("isDuplicate() = %v, want %v", got, tt.want)
			}
		})
	}
}
