package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const shutdownGrace = 5 * time.Second

// Serve runs the HTTP API on addr (":<server.port>" when empty) until ctx is
// done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = fmt.Sprintf(":%d", a.Config.Server.Port)
	}
	if a.Limiter != nil {
		go a.Limiter.Sweep(ctx, time.Minute, 10*time.Minute)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Router(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", addr).Str("processing_method", a.Method).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	}
	a.Log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
