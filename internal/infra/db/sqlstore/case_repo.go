// Package sqlstore is the database/sql case store shared by every SQL dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// Dialect captures what differs between drivers.
type Dialect struct {
	Name string
	// Insert takes (id, result_json, created_at).
	Insert string
	// Select takes (id) and returns (id, result_json, created_at).
	Select string
	// TimeAsText stores created_at as an RFC 3339 string.
	TimeAsText  bool
	IsDuplicate func(error) bool
}

type CaseRepository struct {
	db *sql.DB
	d  Dialect
}

func NewCaseRepository(db *sql.DB, d Dialect) *CaseRepository {
	return &CaseRepository{db: db, d: d}
}

func (r *CaseRepository) Dialect() string { return r.d.Name }

// Put inserts a new case. Existing ids are never overwritten.
func (r *CaseRepository) Put(ctx context.Context, rec *domain.Record) error {
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode case %s: %w", rec.ID, err)
	}
	created := rec.CreatedAt.UTC()
	var createdArg any = created
	if r.d.TimeAsText {
		createdArg = created.Format(time.RFC3339Nano)
	}

	if _, err := r.db.ExecContext(ctx, r.d.Insert, string(rec.ID), string(result), createdArg); err != nil {
		if r.d.IsDuplicate != nil && r.d.IsDuplicate(err) {
			return fmt.Errorf("case %s: %w", rec.ID, domain.ErrDuplicateCase)
		}
		return fmt.Errorf("insert case %s: %w", rec.ID, err)
	}
	return nil
}

func (r *CaseRepository) Get(ctx context.Context, id domain.CaseID) (*domain.Record, error) {
	var (
		rec     domain.Record
		rawID   string
		result  string
		created time.Time
		text    string
	)
	dest := []any{&rawID, &result, &created}
	if r.d.TimeAsText {
		dest[2] = &text
	}

	err := r.db.QueryRowContext(ctx, r.d.Select, string(id)).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select case %s: %w", id, err)
	}

	if r.d.TimeAsText {
		created, err = time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return nil, fmt.Errorf("decode created_at of %s: %w", id, err)
		}
	}
	var res ai.Result
	if err := json.Unmarshal([]byte(result), &res); err != nil {
		return nil, fmt.Errorf("decode case %s: %w", id, err)
	}

	rec.ID = domain.CaseID(rawID)
	rec.Result = res
	rec.CreatedAt = created.UTC()
	return &rec, nil
}

// Ping is used by the readiness check.
func (r *CaseRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
