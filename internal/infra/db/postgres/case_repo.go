package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/bryanwahyu/medcase/internal/infra/db/sqlstore"
)

const uniqueViolation = "23505"

var Dialect = sqlstore.Dialect{
	Name: "postgres",
	Insert: `
INSERT INTO medical_cases (id, result_json, created_at)
VALUES ($1,$2,$3)`,
	Select: `
SELECT id, result_json::text, created_at
FROM medical_cases
WHERE id=$1`,
	IsDuplicate: isDuplicate,
}

func NewCaseRepository(db *sql.DB) *sqlstore.CaseRepository {
	return sqlstore.NewCaseRepository(db, Dialect)
}

// isDuplicate understands both lib/pq and pgx errors.
func isDuplicate(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
