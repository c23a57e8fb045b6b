// Package memory is a process-local case store, used when no database is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

type CaseRepository struct {
	mu      sync.RWMutex
	records map[domain.CaseID]*domain.Record
}

func NewCaseRepository() *CaseRepository {
	return &CaseRepository{records: make(map[domain.CaseID]*domain.Record)}
}

// Put stores a copy of r; an existing id is never overwritten.
func (r *CaseRepository) Put(ctx context.Context, rec *domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.ID]; exists {
		return domain.ErrDuplicateCase
	}
	r.records[rec.ID] = rec.Clone()
	return nil
}

// Get returns a copy of the stored record.
func (r *CaseRepository) Get(ctx context.Context, id domain.CaseID) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	return rec.Clone(), nil
}

// Len reports how many cases are stored.
func (r *CaseRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
