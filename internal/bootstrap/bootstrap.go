// Package bootstrap builds the case service and its HTTP router from config.
// Both the API server and the CLI go through here so they share one wiring.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/medcase/internal/application"
	appai "github.com/bryanwahyu/medcase/internal/application/ai"
	appcases "github.com/bryanwahyu/medcase/internal/application/cases"
	"github.com/bryanwahyu/medcase/internal/config"
	"github.com/bryanwahyu/medcase/internal/domain/ai"
	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
	"github.com/bryanwahyu/medcase/internal/infra/ai/gemini"
	"github.com/bryanwahyu/medcase/internal/infra/ai/openai"
	"github.com/bryanwahyu/medcase/internal/infra/cache"
	"github.com/bryanwahyu/medcase/internal/infra/db/memory"
	"github.com/bryanwahyu/medcase/internal/infra/db/migrations"
	mysqlp "github.com/bryanwahyu/medcase/internal/infra/db/mysql"
	"github.com/bryanwahyu/medcase/internal/infra/db/postgres"
	"github.com/bryanwahyu/medcase/internal/infra/db/sqlite"
	"github.com/bryanwahyu/medcase/internal/infra/events"
	"github.com/bryanwahyu/medcase/internal/infra/httpserver"
	"github.com/bryanwahyu/medcase/internal/infra/storage"
	"github.com/bryanwahyu/medcase/internal/middleware"
)

// App holds everything a process needs. Close releases it in reverse order.
type App struct {
	Config  *config.Config
	Log     zerolog.Logger
	Service *appcases.Service
	Metrics *middleware.Metrics
	Limiter *middleware.RateLimiter
	Checks  map[string]middleware.HealthChecker
	// Method is the processing-method label stamped on results.
	Method string

	closers []func() error
}

func (a *App) onClose(f func() error) { a.closers = append(a.closers, f) }

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Router exposes the service over HTTP.
func (a *App) Router() http.Handler {
	return httpserver.NewRouter(a.Service, httpserver.Options{
		MaxUploadBytes:   a.Config.Server.MaxUploadBytes,
		CORSOrigins:      a.Config.Server.CORSOrigins,
		ProcessingMethod: a.Method,
		Checks:           a.Checks,
		Metrics:          a.Metrics,
		Limiter:          a.Limiter,
		Log:              a.Log,
	})
}

// New wires the service. Optional backends (MinIO, Redis, Kafka) are only
// built when configured. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	app := &App{
		Config:  cfg,
		Log:     log,
		Metrics: middleware.NewMetrics(),
		Checks:  map[string]middleware.HealthChecker{},
	}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	repo, err := app.openRepository(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedis(ctx, cache.RedisOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.onClose(rdb.Close)
		app.Checks["redis"] = middleware.CheckFunc(rdb.Ping)
		repo = &cache.Repository{Next: repo, Cache: rdb, TTL: cfg.Redis.TTL, Log: log}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("case cache enabled")
	}

	provider, model, err := app.openProvider(ctx)
	if err != nil {
		return nil, err
	}
	app.Method = cfg.ProcessingMethod(model)

	svc := &appcases.Service{
		Repo:    repo,
		Gateway: appai.NewGateway(provider, app.Method, cfg.AI.Timeout),
		Clock:   application.SystemClock{},
		Metrics: app.Metrics,
		Log:     log,
	}

	if cfg.Minio.Enabled {
		store, err := storage.New(ctx, storage.Options{
			Endpoint:  cfg.Minio.Endpoint,
			Region:    cfg.Minio.Region,
			Bucket:    cfg.Minio.BucketName,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		svc.Archive = store
		app.Checks["minio"] = middleware.CheckFunc(store.Ping)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		app.onClose(pub.Close)
		svc.Events = pub
	}

	if rl := cfg.Server.RateLimit; rl.Capacity > 0 {
		app.Limiter = middleware.NewRateLimiter(rl.Capacity, rl.RefillPerSecond)
	}

	app.Service = svc
	log.Info().
		Str("driver", cfg.Database.Driver).
		Str("processing_method", app.Method).
		Bool("archive", svc.Archive != nil).
		Bool("events", svc.Events != nil).
		Msg("case service ready")
	return app, nil
}

func (a *App) openRepository(ctx context.Context) (domain.Repository, error) {
	db, dialect, err := OpenDB(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return memory.NewCaseRepository(), nil
	}
	a.onClose(db.Close)
	a.Checks["database"] = middleware.CheckFunc(db.PingContext)

	if a.Config.Database.Migrate {
		if err := migrations.Up(db, dialect); err != nil {
			return nil, err
		}
	}
	switch dialect {
	case "mysql":
		return mysqlp.NewCaseRepository(db), nil
	case "postgres", "pgx":
		return postgres.NewCaseRepository(db), nil
	default:
		return sqlite.NewCaseRepository(db), nil
	}
}

// OpenDB connects to the configured SQL database. It returns a nil db for
// the memory driver.
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, string, error) {
	d := cfg.Database.Driver
	var (
		db  *sql.DB
		err error
	)
	switch d {
	case "memory":
		return nil, d, nil
	case "sqlite":
		db, err = sqlite.Connect(ctx, cfg.Database.Path)
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
	case "postgres", "pgx":
		db, err = postgres.Connect(ctx, d, cfg.PostgresDSN())
	default:
		return nil, d, fmt.Errorf("database driver %q not supported", d)
	}
	if err != nil {
		return nil, d, fmt.Errorf("%s connect: %w", d, err)
	}
	return db, d, nil
}

func (a *App) openProvider(ctx context.Context) (ai.Provider, string, error) {
	c := a.Config.AI
	switch c.Provider {
	case "gemini":
		cl, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:      c.APIKey,
			Model:       c.Model,
			Endpoint:    c.BaseURL,
			MaxTokens:   c.MaxTokens,
			Temperature: c.Temperature,
		})
		if err != nil {
			return nil, "", err
		}
		a.onClose(cl.Close)
		return cl, cl.Model(), nil
	case "openai", "groq":
		if c.APIKey == "" {
			return nil, "", fmt.Errorf("%s: api key is empty", c.Provider)
		}
		opts := openai.Options{
			APIKey:      c.APIKey,
			BaseURL:     c.BaseURL,
			Model:       c.Model,
			MaxTokens:   c.MaxTokens,
			Temperature: c.Temperature,
			JSONMode:    c.JSONMode,
		}
		cl := openai.NewClient(opts)
		if c.Provider == "groq" {
			cl = openai.NewGroq(opts)
		}
		return cl, cl.Model(), nil
	default:
		return nil, "", fmt.Errorf("ai provider %q not supported", c.Provider)
	}
}
