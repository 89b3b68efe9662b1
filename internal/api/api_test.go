package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"mindreel/relevance/internal/config"
	"mindreel/relevance/internal/model/domain"
	"mindreel/relevance/internal/service/evaluation"
)

type fakeEvaluator struct {
	readErr    error
	computeErr error
	lastErr    error
	gotFamily  domain.Family
	gotF1      [2]float64
}

func (f *fakeEvaluator) CheckRelevance(_ domain.PreferenceProfile, items []domain.RecommendationItem) []domain.ItemVerdict {
	out := make([]domain.ItemVerdict, len(items))
	for i, it := range items {
		out[i] = domain.ItemVerdict{ID: it.ID, Verdict: domain.Verdict{IsRelevant: true, RelevanceScore: 5}}
	}
	return out
}

func (f *fakeEvaluator) Compute(_ context.Context, userID int64, family domain.Family, _ domain.PreferenceProfile) (domain.MetricResult, error) {
	f.gotFamily = family
	if f.readErr != nil {
		return domain.MetricResult{}, f.readErr
	}
	res := domain.MetricResult{UserID: userID, Family: family, Rate: domain.Rate{Exact: 0.5, Fixed: 0.5, Percentage: 50}}
	if f.computeErr != nil {
		if domain.IsStorage(f.computeErr) {
			res.Persistence = domain.Persistence{Message: "metric computed but not stored"}
			return res, f.computeErr
		}
		return domain.MetricResult{}, f.computeErr
	}
	res.Persistence = domain.Persistence{Written: true, Verified: true}
	return res, nil
}

func (f *fakeEvaluator) ComputeF1(_ context.Context, userID int64, p, r float64) (domain.MetricResult, error) {
	f.gotF1 = [2]float64{p, r}
	return domain.MetricResult{UserID: userID, Family: domain.FamilyF1, Persistence: domain.Persistence{Verified: true}}, nil
}

func (f *fakeEvaluator) Analyze(_ context.Context, userID int64, _ domain.PreferenceProfile, items []domain.RecommendationItem) (domain.Analysis, error) {
	return domain.Analysis{UserID: userID, TotalCount: len(items)}, nil
}

func (f *fakeEvaluator) LastGenerationRelevance(context.Context, int64) (evaluation.LastGeneration, error) {
	return evaluation.LastGeneration{}, f.lastErr
}

type fakeHistory struct {
	gotUser *int64
	called  bool
}

func (f *fakeHistory) History(_ context.Context, userID *int64) ([]domain.HistoryPoint, error) {
	f.gotUser, f.called = userID, true
	return []domain.HistoryPoint{}, nil
}

func (f *fakeHistory) Averages(_ context.Context, userID *int64) (domain.Averages, error) {
	f.gotUser, f.called = userID, true
	return domain.Averages{}, nil
}

type fakeRanker struct {
	gotKind domain.EntityKind
}

func (f *fakeRanker) Rank(_ context.Context, kind domain.EntityKind) ([]domain.ProsperityRow, error) {
	f.gotKind = kind
	return []domain.ProsperityRow{{Entity: "Christopher Nolan", Kind: kind, Score: 9.5}}, nil
}

func (f *fakeRanker) AwardTotals(context.Context) (domain.AwardTotals, error) {
	return domain.AwardTotals{Movies: 3}, nil
}

type fakeStore struct{ pingErr error }

func (f fakeStore) Ping(context.Context) error { return f.pingErr }
func (f fakeStore) BreakerState() string       { return "closed" }

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

type fixture struct {
	eval    *fakeEvaluator
	history *fakeHistory
	ranker  *fakeRanker
	limiter *fakeLimiter
	store   fakeStore
}

func newFixture() *fixture {
	return &fixture{
		eval:    &fakeEvaluator{},
		history: &fakeHistory{},
		ranker:  &fakeRanker{},
		limiter: &fakeLimiter{allow: true},
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	cfg := config.New().Server
	cfg.IPRequestsPerMin = 0
	router := NewRouter(NewHandler(f.eval, f.history, f.ranker, f.store, f.limiter), cfg)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		setup    func(*fixture)
		wantCode int
		wantErr  string
	}{
		{
			name: "relevance batch", method: http.MethodPost, path: "/api/v1/relevance",
			body:     `{"userPreferences":{"genres":["drama"]},"recommendations":[{"imdbID":"tt1"}]}`,
			wantCode: http.StatusOK,
		},
		{
			name: "relevance without items", method: http.MethodPost, path: "/api/v1/relevance",
			body:     `{"userPreferences":{}}`,
			wantCode: http.StatusBadRequest, wantErr: domain.CodeInvalidInput,
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/api/v1/relevance",
			body:     `{`,
			wantCode: http.StatusBadRequest, wantErr: domain.CodeInvalidInput,
		},
		{
			name: "bad user id", method: http.MethodGet, path: "/api/v1/users/abc/relevance/last",
			wantCode: http.StatusBadRequest, wantErr: domain.CodeInvalidInput,
		},
		{
			name: "no saved generation", method: http.MethodGet, path: "/api/v1/users/7/relevance/last",
			setup: func(f *fixture) {
				f.eval.lastErr = domain.NewError(domain.ModuleStore, domain.CodeNotFound, "no preferences", nil)
			},
			wantCode: http.StatusNotFound, wantErr: domain.CodeNotFound,
		},
		{
			name: "unknown family", method: http.MethodPost, path: "/api/v1/users/7/metrics/ndcg",
			body:     `{}`,
			wantCode: http.StatusBadRequest, wantErr: domain.CodeUnknownFamily,
		},
		{
			name: "population read failure", method: http.MethodPost, path: "/api/v1/users/7/metrics/precision",
			body: `{}`,
			setup: func(f *fixture) {
				f.eval.readErr = domain.StorageError("read recommendations", errors.New("conn refused"))
			},
			wantCode: http.StatusServiceUnavailable, wantErr: domain.CodeStorage,
		},
		{
			name: "f1 missing recall", method: http.MethodPost, path: "/api/v1/users/7/metrics/f1",
			body:     `{"precision":0.5}`,
			wantCode: http.StatusBadRequest, wantErr: domain.CodeInvalidInput,
		},
		{
			name: "f1 out of range", method: http.MethodPost, path: "/api/v1/users/7/metrics/f1",
			body:     `{"precision":0.5,"recall":1.5}`,
			wantCode: http.StatusBadRequest, wantErr: domain.CodeInvalidInput,
		},
		{
			name: "unknown entity kind", method: http.MethodGet, path: "/api/v1/prosperity/studios",
			wantCode: http.StatusBadRequest, wantErr: domain.CodeUnknownEntityKind,
		},
		{
			name: "user rate limited", method: http.MethodPost, path: "/api/v1/users/7/metrics/recall",
			body:     `{}`,
			setup:    func(f *fixture) { f.limiter.allow = false },
			wantCode: http.StatusTooManyRequests, wantErr: domain.CodeRateLimited,
		},
		{
			name: "limiter down fails open", method: http.MethodPost, path: "/api/v1/users/7/metrics/recall",
			body:     `{}`,
			setup:    func(f *fixture) { f.limiter.allow, f.limiter.err = false, errors.New("redis down") },
			wantCode: http.StatusOK,
		},
		{
			name: "database down", method: http.MethodGet, path: "/health",
			setup:    func(f *fixture) { f.store.pingErr = errors.New("dial tcp") },
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			rec, resp := f.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr == "" {
				if resp.Error != nil {
					t.Errorf("error = %+v, want none", resp.Error)
				}
				return
			}
			if resp.Status != "error" || resp.Error == nil || resp.Error.Code != tt.wantErr {
				t.Errorf("response = %+v, want error %s", resp, tt.wantErr)
			}
		})
	}
}

func TestComputeMetricUnverifiedWrite(t *testing.T) {
	f := newFixture()
	f.eval.computeErr = domain.StorageError("insert metric", errors.New("conn reset"))

	rec, _ := f.do(t, http.MethodPost, "/api/v1/users/7/metrics/specificity", `{"userPreferences":{"genres":["drama"]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data domain.MetricResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Persistence.Verified || body.Data.Rate.Exact != 0.5 {
		t.Errorf("data = %+v, want unverified 0.5", body.Data)
	}
	if f.eval.gotFamily != domain.FamilySpecificity {
		t.Errorf("family = %q, want specificity", f.eval.gotFamily)
	}
	if len(f.limiter.keys) != 1 || f.limiter.keys[0] != "user:7" {
		t.Errorf("limiter keys = %v, want [user:7]", f.limiter.keys)
	}
}

func TestComputeMetricReadFailure(t *testing.T) {
	f := newFixture()
	f.eval.computeErr = domain.NewError(domain.ModuleEvaluation, domain.CodeInvalidInput, "bad profile", nil)

	rec, resp := f.do(t, http.MethodPost, "/api/v1/users/7/metrics/fpr", `{}`)
	if rec.Code != http.StatusBadRequest || resp.Error == nil {
		t.Errorf("status = %d, error = %+v, want 400", rec.Code, resp.Error)
	}
}

func TestComputeF1(t *testing.T) {
	f := newFixture()
	rec, _ := f.do(t, http.MethodPost, "/api/v1/users/3/metrics/f1", `{"precision":0.4,"recall":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if f.eval.gotF1 != [2]float64{0.4, 0} {
		t.Errorf("ComputeF1 args = %v, want [0.4 0]", f.eval.gotF1)
	}
}

func TestHistoryScope(t *testing.T) {
	f := newFixture()
	if rec, _ := f.do(t, http.MethodGet, "/api/v1/metrics/history", ""); rec.Code != http.StatusOK {
		t.Fatalf("platform status = %d", rec.Code)
	}
	if !f.history.called || f.history.gotUser != nil {
		t.Errorf("platform history user = %v, want nil", f.history.gotUser)
	}

	if rec, _ := f.do(t, http.MethodGet, "/api/v1/users/42/metrics/averages", ""); rec.Code != http.StatusOK {
		t.Fatalf("user status = %d", rec.Code)
	}
	if f.history.gotUser == nil || *f.history.gotUser != 42 {
		t.Errorf("user averages user = %v, want 42", f.history.gotUser)
	}
	if len(f.limiter.keys) != 0 {
		t.Errorf("reads consulted the limiter: %v", f.limiter.keys)
	}
}

func TestProsperityKinds(t *testing.T) {
	f := newFixture()
	rec, resp := f.do(t, http.MethodGet, "/api/v1/prosperity/directors", "")
	if rec.Code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("status = %d %q", rec.Code, resp.Status)
	}
	if f.ranker.gotKind != domain.EntityDirector {
		t.Errorf("kind = %q, want director", f.ranker.gotKind)
	}

	rec, _ = f.do(t, http.MethodGet, "/api/v1/prosperity/awards", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"movies_count":3`) {
		t.Errorf("awards = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequestIDPropagation(t *testing.T) {
	f := newFixture()
	cfg := config.New().Server
	router := NewRouter(NewHandler(f.eval, f.history, f.ranker, f.store, nil), cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/averages", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Metadata.RequestID != "req-123" || resp.Metadata.Timestamp.IsZero() {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
}

func TestIPRateLimit(t *testing.T) {
	f := newFixture()
	cfg := config.New().Server
	cfg.IPRequestsPerMin = 2
	router := NewRouter(NewHandler(f.eval, f.history, f.ranker, f.store, f.limiter), cfg)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/history", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}
