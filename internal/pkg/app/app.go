package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"mindreel/relevance/internal/api"
	"mindreel/relevance/internal/config"
	"mindreel/relevance/internal/logging"
	"mindreel/relevance/internal/service/db"
	"mindreel/relevance/internal/service/evaluation"
	"mindreel/relevance/internal/service/history"
	"mindreel/relevance/internal/service/prosperity"
	"mindreel/relevance/internal/service/ratelimit"
	"mindreel/relevance/internal/service/relevance"
)

type App struct {
	cfg *config.Config
}

func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Run serves the API until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	store, err := db.New(a.cfg.Database, a.cfg.Breaker)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	policy, err := relevance.PolicyFrom(a.cfg.Relevance.Threshold, a.cfg.Relevance.Policy)
	if err != nil {
		return fmt.Errorf("relevance policy: %w", err)
	}
	opts := []relevance.Option{relevance.WithPolicy(policy)}
	if a.cfg.Relevance.ReferenceYear > 0 {
		opts = append(opts, relevance.WithReferenceYear(a.cfg.Relevance.ReferenceYear))
	}
	classifier := relevance.New(opts...)

	limiter, closeLimiter, err := a.limiter()
	if err != nil {
		return err
	}
	defer closeLimiter()

	handler := api.NewHandler(
		evaluation.New(store, classifier),
		history.New(store),
		prosperity.New(store, a.cfg.Prosperity),
		store,
		limiter,
	)

	server := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, a.cfg.Server),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	var (
		wg       sync.WaitGroup
		serveErr error
		stopped  = make(chan struct{})
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(stopped)
		logging.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		logging.Info().Msg("shutting down http server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("http server shutdown")
		}
	}()
	wg.Wait()

	return serveErr
}

func (a *App) limiter() (ratelimit.Limiter, func(), error) {
	if !a.cfg.RateLimit.Enabled {
		return ratelimit.Unlimited{}, func() {}, nil
	}
	l, err := ratelimit.New(a.cfg.RateLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("rate limiter: %w", err)
	}
	logging.Info().Str("redis", a.cfg.RateLimit.RedisAddr).Msg("per-user rate limiting enabled")
	return l, func() { l.Close() }, nil
}
