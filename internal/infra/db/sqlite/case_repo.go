package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/bryanwahyu/medcase/internal/infra/db/sqlstore"
)

var Dialect = sqlstore.Dialect{
	Name: "sqlite",
	Insert: `
INSERT INTO medical_cases (id, result_json, created_at)
VALUES (?,?,?)`,
	Select: `
SELECT id, result_json, created_at
FROM medical_cases
WHERE id=?`,
	TimeAsText:  true,
	IsDuplicate: isDuplicate,
}

func NewCaseRepository(db *sql.DB) *sqlstore.CaseRepository {
	return sqlstore.NewCaseRepository(db, Dialect)
}

func isDuplicate(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
