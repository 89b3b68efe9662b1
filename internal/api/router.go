package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mindreel/relevance/internal/config"
	"mindreel/relevance/internal/metrics"
	"mindreel/relevance/internal/model/domain"
)

// NewRouter builds the HTTP surface of the service.
func NewRouter(h *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	r.Use(Instrument)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IPRequestsPerMin > 0 {
			r.Use(httprate.Limit(
				cfg.IPRequestsPerMin,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(ipLimited),
			))
		}
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}

		r.Post("/relevance", h.CheckRelevance)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/relevance/last", h.LastGeneration)
			r.Get("/metrics/history", h.History)
			r.Get("/metrics/averages", h.Averages)

			r.Group(func(r chi.Router) {
				r.Use(h.LimitUser)
				r.Post("/analysis", h.SaveAnalysis)
				r.Post("/metrics/f1", h.ComputeF1)
				r.Post("/metrics/{family}", h.ComputeMetric)
			})
		})

		r.Get("/metrics/history", h.History)
		r.Get("/metrics/averages", h.Averages)

		r.Get("/prosperity/awards", h.AwardTotals)
		r.Get("/prosperity/{kind}", h.Prosperity)
	})

	return r
}

func ipLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RateLimited.WithLabelValues("ip").Inc()
	respondFailure(w, r, domain.NewError(moduleAPI, domain.CodeRateLimited, "too many requests", nil))
}
