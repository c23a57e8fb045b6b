// Package cache puts a read-through cache in front of a case repository.
// Stored cases never change, so entries are only ever added or expired.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// ErrMiss is returned by a Backend when the key is absent.
var ErrMiss = errors.New("cache miss")

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

const DefaultTTL = 24 * time.Hour

// Repository decorates a domain.Repository. Cache failures are logged and
// never surface to the caller; the wrapped store stays authoritative.
type Repository struct {
	Next  domain.Repository
	Cache Backend
	TTL   time.Duration
	Log   zerolog.Logger
}

func key(id domain.CaseID) string { return "medcase:case:" + string(id) }

func (r *Repository) Put(ctx context.Context, rec *domain.Record) error {
	if err := r.Next.Put(ctx, rec); err != nil {
		return err
	}
	r.store(ctx, rec)
	return nil
}

func (r *Repository) Get(ctx context.Context, id domain.CaseID) (*domain.Record, error) {
	if b, err := r.Cache.Get(ctx, key(id)); err == nil {
		var rec domain.Record
		if err := json.Unmarshal(b, &rec); err == nil {
			return &rec, nil
		}
		r.Log.Warn().Str("case_id", string(id)).Msg("undecodable cache entry, falling back to store")
	} else if !errors.Is(err, ErrMiss) {
		r.Log.Warn().Err(err).Str("case_id", string(id)).Msg("cache get failed")
	}

	rec, err := r.Next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, rec)
	return rec, nil
}

func (r *Repository) store(ctx context.Context, rec *domain.Record) {
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := r.Cache.Set(ctx, key(rec.ID), b, ttl); err != nil {
		r.Log.Warn().Err(err).Str("case_id", string(rec.ID)).Msg("cache set failed")
	}
}
