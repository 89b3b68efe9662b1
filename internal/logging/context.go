package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const requestIDKey contextKey = "request_id"

func GenerateRequestID() string {
	return uuid.New().String()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns "" when the context carries no request ID.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger annotated with the request ID stored in ctx.
//
//	logging.Ctx(ctx).Info().Int64("user_id", id).Msg("metric saved")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := Logger()
	if id := RequestIDFromContext(ctx); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}
	return &logger
}
