package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"mindreel/relevance/internal/model/domain"
	"mindreel/relevance/internal/service/evaluation"
	"mindreel/relevance/internal/service/ratelimit"
	"mindreel/relevance/internal/validation"
)

type Evaluator interface {
	CheckRelevance(profile domain.PreferenceProfile, items []domain.RecommendationItem) []domain.ItemVerdict
	Compute(ctx context.Context, userID int64, family domain.Family, profile domain.PreferenceProfile) (domain.MetricResult, error)
	ComputeF1(ctx context.Context, userID int64, precision, recall float64) (domain.MetricResult, error)
	Analyze(ctx context.Context, userID int64, profile domain.PreferenceProfile, items []domain.RecommendationItem) (domain.Analysis, error)
	LastGenerationRelevance(ctx context.Context, userID int64) (evaluation.LastGeneration, error)
}

type HistoryReader interface {
	History(ctx context.Context, userID *int64) ([]domain.HistoryPoint, error)
	Averages(ctx context.Context, userID *int64) (domain.Averages, error)
}

type Ranker interface {
	Rank(ctx context.Context, kind domain.EntityKind) ([]domain.ProsperityRow, error)
	AwardTotals(ctx context.Context) (domain.AwardTotals, error)
}

// Store is the part of the storage layer the health check looks at.
type Store interface {
	Ping(ctx context.Context) error
	BreakerState() string
}

type Handler struct {
	evaluator Evaluator
	history   HistoryReader
	ranker    Ranker
	store     Store
	limiter   ratelimit.Limiter
}

func NewHandler(evaluator Evaluator, history HistoryReader, ranker Ranker, store Store, limiter ratelimit.Limiter) *Handler {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &Handler{
		evaluator: evaluator,
		history:   history,
		ranker:    ranker,
		store:     store,
		limiter:   limiter,
	}
}

const (
	moduleAPI    = "api"
	maxBodyBytes = 1 << 20
)

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.NewError(moduleAPI, domain.CodeInvalidInput, "read body", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.NewError(moduleAPI, domain.CodeInvalidInput, "malformed JSON body", err)
	}
	return validation.Struct(dst)
}

func userID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(moduleAPI, domain.CodeInvalidInput, "invalid user id "+strconv.Quote(raw), err)
	}
	return id, nil
}

type healthStatus struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Breaker  string `json:"breaker"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	hs := healthStatus{Status: "healthy", Database: true, Breaker: h.store.BreakerState()}
	status := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		hs.Status = "degraded"
		hs.Database = false
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, &Response{Status: "success", Data: hs, Metadata: metadata(r)})
}

type relevanceRequest struct {
	Profile domain.PreferenceProfile    `json:"userPreferences"`
	Items   []domain.RecommendationItem `json:"recommendations" validate:"required,min=1"`
}

func (h *Handler) CheckRelevance(w http.ResponseWriter, r *http.Request) {
	var req relevanceRequest
	if err := decode(r, &req); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, r, h.evaluator.CheckRelevance(req.Profile, req.Items))
}

func (h *Handler) LastGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	res, err := h.evaluator.LastGenerationRelevance(r.Context(), id)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, r, res)
}

func (h *Handler) SaveAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	var req relevanceRequest
	if err := decode(r, &req); err != nil {
		respondFailure(w, r, err)
		return
	}
	a, err := h.evaluator.Analyze(r.Context(), id, req.Profile, req.Items)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, r, a)
}

type metricRequest struct {
	Profile domain.PreferenceProfile `json:"userPreferences"`
}

func (h *Handler) ComputeMetric(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	family, err := domain.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	var req metricRequest
	if err := decode(r, &req); err != nil {
		respondFailure(w, r, err)
		return
	}

	res, err := h.evaluator.Compute(r.Context(), id, family, req.Profile)
	h.respondMetric(w, r, res, err)
}

type f1Request struct {
	Precision *float64 `json:"precision" validate:"required,min=0,max=1"`
	Recall    *float64 `json:"recall" validate:"required,min=0,max=1"`
}

func (h *Handler) ComputeF1(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	var req f1Request
	if err := decode(r, &req); err != nil {
		respondFailure(w, r, err)
		return
	}

	res, err := h.evaluator.ComputeF1(r.Context(), id, *req.Precision, *req.Recall)
	h.respondMetric(w, r, res, err)
}

// respondMetric still returns a computed value whose write failed; the
// persistence block tells the caller it was not stored.
func (h *Handler) respondMetric(w http.ResponseWriter, r *http.Request, res domain.MetricResult, err error) {
	if err != nil && !evaluation.WriteUnverified(res, err) {
		respondFailure(w, r, err)
		return
	}
	respondData(w, r, res)
}

func optionalUser(r *http.Request) (*int64, error) {
	if chi.URLParam(r, "userID") == "" {
		return nil, nil
	}
	id, err := userID(r)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := optionalUser(r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	points, err := h.history.History(r.Context(), id)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, r, points)
}

func (h *Handler) Averages(w http.ResponseWriter, r *http.Request) {
	id, err := optionalUser(r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	avg, err := h.history.Averages(r.Context(), id)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, r, avg)
}

func (h *Handler) Prosperity(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	rows, err := h.ranker.Rank(r.Context(), kind)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, r, rows)
}

func (h *Handler) AwardTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ranker.AwardTotals(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondData(w, r, totals)
}
