package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sony/gobreaker/v2"

	"mindreel/relevance/internal/config"
	"mindreel/relevance/internal/logging"
	"mindreel/relevance/internal/metrics"
)

// breaker stops hammering Postgres once it keeps failing. Missing rows and
// cancelled requests do not count as failures.
type breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

func newBreaker(cfg config.BreakerConfig) *breaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "postgres",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, sql.ErrNoRows) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("store circuit breaker state changed")
		},
	}
	return &breaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (b *breaker) execute(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// BreakerState reports the store circuit breaker state: closed, half-open or open.
func (db *DB) BreakerState() string {
	return db.breaker.cb.State().String()
}
