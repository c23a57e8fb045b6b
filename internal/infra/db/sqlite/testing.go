package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/bryanwahyu/medcase/internal/infra/db/migrations"
)

// SetupTestDB creates a migrated in-memory database for testing.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Connect(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := migrations.Up(db, "sqlite"); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}
