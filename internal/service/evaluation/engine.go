package evaluation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mindreel/relevance/internal/logging"
	"mindreel/relevance/internal/metrics"
	"mindreel/relevance/internal/model/domain"
	"mindreel/relevance/internal/service/relevance"
)

// RecommendationReader returns every recommendation ever generated, for one
// user when userID is non-nil, otherwise for the whole platform.
type RecommendationReader interface {
	DistinctRecommendations(ctx context.Context, userID *int64) ([]domain.RecommendationItem, error)
}

type MetricWriter interface {
	SaveMetric(ctx context.Context, userID int64, family domain.Family, rate domain.Rate, counts domain.Confusion) (domain.WriteOutcome, error)
}

type GenerationReader interface {
	LastPreferences(ctx context.Context, userID int64) (domain.PreferenceProfile, error)
	GeneratedRecommendations(ctx context.Context, userID int64, at time.Time) ([]domain.RecommendationItem, error)
}

type AnalysisWriter interface {
	SaveAnalysis(ctx context.Context, a domain.Analysis) error
}

// Store is everything the engine needs from persistence.
type Store interface {
	RecommendationReader
	MetricWriter
	GenerationReader
	AnalysisWriter
}

type Engine struct {
	store      Store
	classifier *relevance.Classifier
	now        func() time.Time
}

func New(store Store, classifier *relevance.Classifier) *Engine {
	return &Engine{
		store:      store,
		classifier: classifier,
		now:        time.Now,
	}
}

// CheckRelevance classifies a batch of items against profile.
func (e *Engine) CheckRelevance(profile domain.PreferenceProfile, items []domain.RecommendationItem) []domain.ItemVerdict {
	return e.classifier.ClassifyAll(profile, items)
}

// Counts classifies the platform and user populations against profile.
func (e *Engine) Counts(ctx context.Context, userID int64, profile domain.PreferenceProfile) (domain.Confusion, error) {
	var platform, user []domain.RecommendationItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := e.store.DistinctRecommendations(gctx, nil)
		if err != nil {
			return fmt.Errorf("read platform recommendations: %w", err)
		}
		platform = domain.Distinct(items)
		return nil
	})
	g.Go(func() error {
		items, err := e.store.DistinctRecommendations(gctx, &userID)
		if err != nil {
			return fmt.Errorf("read user recommendations: %w", err)
		}
		user = domain.Distinct(items)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Confusion{}, err
	}

	platformRelevant := e.classifier.CountRelevant(profile, platform)
	userRelevant := e.classifier.CountRelevant(profile, user)
	metrics.RecordClassified("platform", platformRelevant, len(platform))
	metrics.RecordClassified("user", userRelevant, len(user))

	return Confuse(len(platform), platformRelevant, len(user), userRelevant), nil
}

// Compute evaluates family for the user and conditionally persists it.
// When only the write fails, the computed result is returned together with
// the storage error and Persistence.Verified is false.
func (e *Engine) Compute(ctx context.Context, userID int64, family domain.Family, profile domain.PreferenceProfile) (domain.MetricResult, error) {
	counts, err := e.Counts(ctx, userID, profile)
	if err != nil {
		return domain.MetricResult{}, err
	}
	rate, err := Evaluate(family, counts)
	if err != nil {
		return domain.MetricResult{}, err
	}

	res := domain.MetricResult{UserID: userID, Family: family, Rate: rate, Counts: counts}
	res.Persistence, err = e.persist(ctx, userID, family, rate, counts)
	return res, err
}

// ComputeF1 combines already computed precision and recall and persists the result.
func (e *Engine) ComputeF1(ctx context.Context, userID int64, precision, recall float64) (domain.MetricResult, error) {
	rate := F1(precision, recall)
	res := domain.MetricResult{UserID: userID, Family: domain.FamilyF1, Rate: rate}

	var err error
	res.Persistence, err = e.persist(ctx, userID, domain.FamilyF1, rate, domain.Confusion{})
	return res, err
}

func (e *Engine) persist(ctx context.Context, userID int64, family domain.Family, rate domain.Rate, counts domain.Confusion) (domain.Persistence, error) {
	out, err := e.store.SaveMetric(ctx, userID, family, rate, counts)
	metrics.RecordMetricWrite(string(family), out.Written, err)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Int64("user_id", userID).
			Str("family", string(family)).
			Msg("metric write failed")
		// Deadlines and cancellations on the write path still leave a valid result.
		if !domain.IsStorage(err) {
			err = domain.StorageError("save "+string(family), err)
		}
		return domain.Persistence{Message: "metric computed but not stored"},
			fmt.Errorf("save %s for user %d: %w", family, userID, err)
	}
	return domain.Persistence{Written: out.Written, Verified: true, Message: out.Message}, nil
}

// WriteUnverified reports whether err only concerns persisting an otherwise valid result.
func WriteUnverified(res domain.MetricResult, err error) bool {
	return err != nil && res.Family != "" && !res.Persistence.Verified && domain.IsStorage(err)
}

// Analyze classifies one generated batch and appends it to the analysis log.
func (e *Engine) Analyze(ctx context.Context, userID int64, profile domain.PreferenceProfile, items []domain.RecommendationItem) (domain.Analysis, error) {
	items = domain.Distinct(items)
	verdicts := e.classifier.ClassifyAll(profile, items)

	relevant := make([]domain.ItemVerdict, 0, len(verdicts))
	for _, v := range verdicts {
		if v.Verdict.IsRelevant {
			relevant = append(relevant, v)
		}
	}

	date := profile.Date
	if date.IsZero() {
		date = e.now()
	}
	a := domain.Analysis{
		UserID:        userID,
		RelevantCount: len(relevant),
		TotalCount:    len(items),
		Precision:     NewRate(ratio(len(relevant), len(items))),
		Relevant:      relevant,
		Date:          date.UTC(),
	}
	if err := e.store.SaveAnalysis(ctx, a); err != nil {
		return a, fmt.Errorf("save analysis for user %d: %w", userID, err)
	}
	return a, nil
}

// LastGeneration is the relevance of the most recent generation a user saved.
type LastGeneration struct {
	Profile       domain.PreferenceProfile `json:"profile"`
	Verdicts      []domain.ItemVerdict     `json:"verdicts"`
	RelevantCount int                      `json:"relevant_count"`
	TotalCount    int                      `json:"total_count"`
	Precision     domain.Rate              `json:"precision"`
}

func (e *Engine) LastGenerationRelevance(ctx context.Context, userID int64) (LastGeneration, error) {
	profile, err := e.store.LastPreferences(ctx, userID)
	if err != nil {
		return LastGeneration{}, err
	}
	items, err := e.store.GeneratedRecommendations(ctx, userID, profile.Date)
	if err != nil {
		return LastGeneration{}, err
	}

	verdicts := e.classifier.ClassifyAll(profile, domain.Distinct(items))
	relevant := 0
	for _, v := range verdicts {
		if v.Verdict.IsRelevant {
			relevant++
		}
	}
	return LastGeneration{
		Profile:       profile,
		Verdicts:      verdicts,
		RelevantCount: relevant,
		TotalCount:    len(verdicts),
		Precision:     NewRate(ratio(relevant, len(verdicts))),
	}, nil
}
