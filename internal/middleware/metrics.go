package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

// Metrics stores application counters. It also receives case outcomes
// from the case service.
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64

	CasesAnalyzed   atomic.Uint64
	CasesFetched    atomic.Uint64
	ProviderRetries atomic.Uint64

	mu     sync.Mutex
	failed map[domain.Kind]uint64

	StartTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now(), failed: make(map[domain.Kind]uint64)}
}

func (m *Metrics) CaseAnalyzed()    { m.CasesAnalyzed.Add(1) }
func (m *Metrics) CaseFetched()     { m.CasesFetched.Add(1) }
func (m *Metrics) ProviderRetried() { m.ProviderRetries.Add(1) }

func (m *Metrics) CaseFailed(kind domain.Kind) {
	m.mu.Lock()
	m.failed[kind]++
	m.mu.Unlock()
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.mu.Lock()
	failed := make(map[string]uint64, len(m.failed))
	for k, v := range m.failed {
		failed[string(k)] = v
	}
	m.mu.Unlock()

	return map[string]any{
		"requests_total":       m.RequestsTotal.Load(),
		"requests_in_progress": m.RequestsInProgress.Load(),
		"requests_success":     m.RequestsSuccess.Load(),
		"requests_failed":      m.RequestsFailed.Load(),
		"cases_analyzed":       m.CasesAnalyzed.Load(),
		"cases_fetched":        m.CasesFetched.Load(),
		"cases_failed":         failed,
		"provider_retries":     m.ProviderRetries.Load(),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       ms.Alloc,
			"total_alloc_bytes": ms.TotalAlloc,
			"sys_bytes":         ms.Sys,
			"num_gc":            ms.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsTotal.Add(1)
		m.RequestsInProgress.Add(1)
		defer m.RequestsInProgress.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.RequestsSuccess.Add(1)
		} else {
			m.RequestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.Snapshot())
}
