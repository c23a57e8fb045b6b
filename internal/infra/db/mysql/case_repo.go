package mysql

import (
	"database/sql"
	"errors"

	driver "github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/medcase/internal/infra/db/sqlstore"
)

const errDupEntry = 1062

var Dialect = sqlstore.Dialect{
	Name: "mysql",
	Insert: `
INSERT INTO medical_cases (id, result_json, created_at)
VALUES (?,?,?)`,
	Select: `
SELECT id, result_json, created_at
FROM medical_cases
WHERE id=?`,
	IsDuplicate: isDuplicate,
}

func NewCaseRepository(db *sql.DB) *sqlstore.CaseRepository {
	return sqlstore.NewCaseRepository(db, Dialect)
}

func isDuplicate(err error) bool {
	var me *driver.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}
