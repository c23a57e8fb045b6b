package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
	"github.com/bryanwahyu/medcase/internal/infra/db/memory"
)

type mapBackend struct {
	mu   sync.Mutex
	m    map[string][]byte
	gets int
	fail error
}

func newMapBackend() *mapBackend { return &mapBackend{m: map[string][]byte{}} }

func (b *mapBackend) Get(_ context.Context, k string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gets++
	if b.fail != nil {
		return nil, b.fail
	}
	v, ok := b.m[k]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (b *mapBackend) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.m[k] = v
	return nil
}

type countingRepo struct {
	*memory.CaseRepository
	gets int
}

func (c *countingRepo) Get(ctx context.Context, id domain.CaseID) (*domain.Record, error) {
	c.gets++
	return c.CaseRepository.Get(ctx, id)
}

func rec(id string) *domain.Record {
	return &domain.Record{
		ID:        domain.CaseID(id),
		Result:    ai.Result{Summary: "s", Metadata: ai.Metadata{ProcessingMethod: "groq:m", FilesProcessed: ai.FilesProcessed{LabFiles: 2}}},
		CreatedAt: time.Date(2026, 10, 15, 1, 2, 3, 4000, time.UTC),
	}
}

func TestRepository_ReadThrough(t *testing.T) {
	store := &countingRepo{CaseRepository: memory.NewCaseRepository()}
	backend := newMapBackend()
	r := &Repository{Next: store, Cache: backend, Log: zerolog.Nop()}
	ctx := context.Background()

	if err := r.Put(ctx, rec("a")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := r.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if store.gets != 0 {
		t.Errorf("store gets = %d, want 0 after write-through", store.gets)
	}
	if got.Metadata.FilesProcessed.LabFiles != 2 || !got.CreatedAt.Equal(rec("a").CreatedAt) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestRepository_MissFillsCache(t *testing.T) {
	mem := memory.NewCaseRepository()
	_ = mem.Put(context.Background(), rec("b"))
	store := &countingRepo{CaseRepository: mem}
	backend := newMapBackend()
	r := &Repository{Next: store, Cache: backend, Log: zerolog.Nop()}

	for i := 0; i < 3; i++ {
		if _, err := r.Get(context.Background(), "b"); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	if store.gets != 1 {
		t.Errorf("store gets = %d, want 1", store.gets)
	}
}

func TestRepository_NotFoundIsNotCached(t *testing.T) {
	backend := newMapBackend()
	r := &Repository{Next: memory.NewCaseRepository(), Cache: backend, Log: zerolog.Nop()}

	_, err := r.Get(context.Background(), "CASE-DOES-NOT-EXIST")
	if !errors.Is(err, domain.ErrCaseNotFound) {
		t.Fatalf("Get() error = %v, want ErrCaseNotFound", err)
	}
	if len(backend.m) != 0 {
		t.Errorf("cache = %v, want empty", backend.m)
	}
}

func TestRepository_BackendDownFallsBack(t *testing.T) {
	backend := newMapBackend()
	backend.fail = errors.New("connection refused")
	r := &Repository{Next: memory.NewCaseRepository(), Cache: backend, Log: zerolog.Nop()}
	ctx := context.Background()

	if err := r.Put(ctx, rec("c")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := r.Get(ctx, "c"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestRepository_CorruptEntry(t *testing.T) {
	mem := memory.NewCaseRepository()
	_ = mem.Put(context.Background(), rec("d"))
	backend := newMapBackend()
	backend.m[key("d")] = []byte("{not json")
	r := &Repository{Next: mem, Cache: backend, Log: zerolog.Nop()}

	got, err := r.Get(context.Background(), "d")
	if err != nil || got.ID != "d" {
		t.Fatalf("Get() = %v, %v", got, err)
	}
}

func TestRepository_DuplicatePutLeavesCacheAlone(t *testing.T) {
	backend := newMapBackend()
	r := &Repository{Next: memory.NewCaseRepository(), Cache: backend, Log: zerolog.Nop()}
	ctx := context.Background()

	_ = r.Put(ctx, rec("e"))
	dup := rec("e")
	dup.Summary = "overwrite attempt"
	if err := r.Put(ctx, dup); !errors.Is(err, domain.ErrDuplicateCase) {
		t.Fatalf("Put() error = %v, want ErrDuplicateCase", err)
	}
	got, _ := r.Get(ctx, "e")
	if got.Summary != "s" {
		t.Errorf("Summary = %q, cache was overwritten", got.Summary)
	}
}
