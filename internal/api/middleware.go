package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"mindreel/relevance/internal/logging"
	"mindreel/relevance/internal/metrics"
	"mindreel/relevance/internal/model/domain"
)

const requestIDHeader = "X-Request-ID"

// RequestID keeps an incoming X-Request-ID or assigns a new one and stores
// it in the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = logging.GenerateRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// Instrument records request counts and latency per route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), elapsed)

		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}

// LimitUser applies the per-user limiter to routes carrying {userID}.
// Limiter failures let the request through.
func (h *Handler) LimitUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "userID")
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		ok, err := h.limiter.Allow(r.Context(), "user:"+id)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", id).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			metrics.RateLimited.WithLabelValues("user").Inc()
			respondFailure(w, r, domain.NewError(domain.ModuleRateLimit, domain.CodeRateLimited, "too many requests for user "+id, nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
