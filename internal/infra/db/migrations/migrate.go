// Package migrations embeds the schema for every supported SQL dialect and
// applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mysqlmig "github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmig "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	pgmig "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemig "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed mysql/*.sql postgres/*.sql sqlite/*.sql
var files embed.FS

// Up applies all pending migrations for dialect (mysql, postgres, pgx or sqlite).
// The caller keeps ownership of db.
func Up(db *sql.DB, dialect string) error {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s up: %w", dialect, err)
	}
	return nil
}

// Version reports the applied schema version.
func Version(db *sql.DB, dialect string) (uint, bool, error) {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func newMigrate(db *sql.DB, dialect string) (*migrate.Migrate, error) {
	dir := dialect
	var (
		drv database.Driver
		err error
	)
	switch dialect {
	case "mysql":
		drv, err = mysqlmig.WithInstance(db, &mysqlmig.Config{})
	case "postgres":
		drv, err = pgmig.WithInstance(db, &pgmig.Config{})
	case "pgx":
		dir = "postgres"
		drv, err = pgxmig.WithInstance(db, &pgxmig.Config{})
	case "sqlite":
		drv, err = sqlitemig.WithInstance(db, &sqlitemig.Config{})
	default:
		return nil, fmt.Errorf("migrate: unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("migrate %s driver: %w", dialect, err)
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("migrate source: %w", err)
	}
	// m.Close would close db as well, so the instance is left to the GC.
	return migrate.NewWithInstance("iofs", src, dialect, drv)
}
