package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
	"github.com/bryanwahyu/medcase/internal/middleware"
)

// CaseService is what the router needs from the application layer.
type CaseService interface {
	Analyze(ctx context.Context, sub domain.Submission) (*domain.Record, error)
	Fetch(ctx context.Context, id domain.CaseID) (*domain.Record, error)
}

type Options struct {
	MaxUploadBytes int64
	CORSOrigins    []string
	// ProcessingMethod is reported by /health.
	ProcessingMethod string
	Checks           map[string]middleware.HealthChecker
	Metrics          *middleware.Metrics
	// Limiter guards the analyze routes; nil disables rate limiting.
	Limiter *middleware.RateLimiter
	Log     zerolog.Logger
}

const defaultMaxUpload = 128 << 20

// Transport-level failures. They are not file rules: a request can carry
// only valid files and still exceed what this deployment accepts.
var ErrRequestTooLarge = errors.New("request body too large")

const (
	KindRequestTooLarge   = "RequestTooLarge"
	KindRateLimitExceeded = "RateLimitExceeded"
)

type Router struct {
	svc  CaseService
	opts Options
}

func NewRouter(svc CaseService, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	r := &Router{svc: svc, opts: opts}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(opts.Log))
	mux.Use(opts.Metrics.Middleware)
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Checks, r.healthInfo()))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.HealthHandler(opts.Checks, nil))
	mux.Get("/metrics", opts.Metrics.Handler)

	analyze := mux.With()
	if opts.Limiter != nil {
		analyze = mux.With(opts.Limiter.Limit(http.HandlerFunc(rateLimited)))
	}
	analyze.Post("/v1/cases", r.wrap(r.handleAnalyze))
	analyze.Post("/generate-soap", r.wrap(r.handleAnalyze))
	mux.Get("/v1/cases/{id}", r.wrap(r.handleFetch))

	return mux
}

func (r *Router) healthInfo() map[string]any {
	return map[string]any{
		"processing_method": r.opts.ProcessingMethod,
		"supported_formats": SupportedExtensions(),
	}
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	File  string `json:"file,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

var statusByKind = map[domain.Kind]int{
	domain.KindInvalidSubmission:   http.StatusBadRequest,
	domain.KindUnsupportedFileType: http.StatusBadRequest,
	domain.KindFileTooLarge:        http.StatusBadRequest,
	domain.KindCaseNotFound:        http.StatusNotFound,
	domain.KindDuplicateCase:       http.StatusConflict,
	domain.KindProviderRateLimited: http.StatusTooManyRequests,
	domain.KindProviderRejected:    http.StatusBadGateway,
	domain.KindProviderUnavailable: http.StatusServiceUnavailable,
	domain.KindProviderTimeout:     http.StatusGatewayTimeout,
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	if errors.Is(err, ErrRequestTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if s, ok := statusByKind[domain.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := StatusOf(err)
		body := errorBody{Error: err.Error(), Kind: kindOf(err)}

		var fe *domain.FileError
		if errors.As(err, &fe) {
			body.File, body.Rule = fe.File, fe.Rule
		}
		if status == http.StatusInternalServerError {
			r.opts.Log.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
			// jangan bocorin detail internal ke client
			body.Error = "internal error"
		}
		writeJSON(w, status, body)
	}
}

func kindOf(err error) string {
	if errors.Is(err, ErrRequestTooLarge) {
		return KindRequestTooLarge
	}
	return string(domain.KindOf(err))
}

func rateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, errorBody{
		Error: "rate limit exceeded, please try again later",
		Kind:  KindRateLimitExceeded,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /v1/cases (multipart)
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	sub, cleanup, err := parseSubmission(w, req, r.opts.MaxUploadBytes)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := r.svc.Analyze(req.Context(), sub)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rec)
	return nil
}

// GET /v1/cases/{id}
func (r *Router) handleFetch(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateCaseID(id); err != nil {
		return fmt.Errorf("case %q: %w", id, domain.ErrCaseNotFound)
	}
	rec, err := r.svc.Fetch(req.Context(), domain.CaseID(id))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rec)
	return nil
}

// SupportedExtensions lists every accepted extension per category, sorted.
func SupportedExtensions() map[string][]string {
	out := map[string][]string{}
	for c, rule := range domain.Rules {
		exts := append([]string(nil), rule.Extensions...)
		sort.Strings(exts)
		out[string(c)] = exts
	}
	return out
}
