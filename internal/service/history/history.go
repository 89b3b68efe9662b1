package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"mindreel/relevance/internal/model/domain"
	"mindreel/relevance/internal/service/evaluation"
)

const dateLabel = "02-01-2006"

// RecordReader reads stored metric and analysis values, for one user when
// userID is non-nil, otherwise across the platform.
type RecordReader interface {
	MetricRecords(ctx context.Context, userID *int64) ([]domain.MetricPoint, error)
	AnalysisRecords(ctx context.Context, userID *int64) ([]domain.AnalysisPoint, error)
}

type Aggregator struct {
	reader RecordReader
}

func New(reader RecordReader) *Aggregator {
	return &Aggregator{reader: reader}
}

func (a *Aggregator) load(ctx context.Context, userID *int64) ([]domain.MetricPoint, []domain.AnalysisPoint, error) {
	var (
		ms []domain.MetricPoint
		as []domain.AnalysisPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if ms, err = a.reader.MetricRecords(gctx, userID); err != nil {
			return fmt.Errorf("read metric records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if as, err = a.reader.AnalysisRecords(gctx, userID); err != nil {
			return fmt.Errorf("read analysis records: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ms, as, nil
}

// History returns one point per recorded date, ascending, each holding the
// running averages over every record up to and including that date.
func (a *Aggregator) History(ctx context.Context, userID *int64) ([]domain.HistoryPoint, error) {
	ms, as, err := a.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Build(ms, as), nil
}

// Averages returns the overall means of every stored record in scope.
func (a *Aggregator) Averages(ctx context.Context, userID *int64) (domain.Averages, error) {
	ms, as, err := a.load(ctx, userID)
	if err != nil {
		return domain.Averages{}, err
	}

	var p, r, f, last mean
	for _, m := range ms {
		switch m.Family {
		case domain.FamilyPrecision:
			p.add(m.Exact)
		case domain.FamilyRecall:
			r.add(m.Exact)
		case domain.FamilyF1:
			f.add(m.Exact)
		}
	}
	for _, an := range as {
		last.add(an.Precision)
	}
	return domain.Averages{
		Precision:          evaluation.NewRate(p.value()),
		Recall:             evaluation.NewRate(r.value()),
		F1:                 evaluation.NewRate(f.value()),
		PrecisionLastRound: evaluation.NewRate(last.value()),
	}, nil
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

// value is 0 when nothing was added.
func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func day(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// Build merges the metric and analysis series. Dates present in only one
// series get zero values for the other.
func Build(ms []domain.MetricPoint, as []domain.AnalysisPoint) []domain.HistoryPoint {
	points := make(map[time.Time]*domain.HistoryPoint)
	point := func(d time.Time) *domain.HistoryPoint {
		p, ok := points[d]
		if !ok {
			p = &domain.HistoryPoint{Date: d, Label: d.Format(dateLabel)}
			points[d] = p
		}
		return p
	}

	ms = append([]domain.MetricPoint(nil), ms...)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Date.Before(ms[j].Date) })

	var precision, recall, f1 mean
	for i := 0; i < len(ms); {
		d := day(ms[i].Date)
		for ; i < len(ms) && day(ms[i].Date).Equal(d); i++ {
			switch ms[i].Family {
			case domain.FamilyPrecision:
				precision.add(ms[i].Exact)
			case domain.FamilyRecall:
				recall.add(ms[i].Exact)
			case domain.FamilyF1:
				f1.add(ms[i].Exact)
			}
		}
		p := point(d)
		p.AvgPrecision, p.AvgPrecisionPercentage = rate(precision)
		p.AvgRecall, p.AvgRecallPercentage = rate(recall)
		p.AvgF1, p.AvgF1Percentage = rate(f1)
	}

	as = append([]domain.AnalysisPoint(nil), as...)
	sort.SliceStable(as, func(i, j int) bool { return as[i].Date.Before(as[j].Date) })

	var last mean
	for i := 0; i < len(as); {
		d := day(as[i].Date)
		for ; i < len(as) && day(as[i].Date).Equal(d); i++ {
			last.add(as[i].Precision)
		}
		p := point(d)
		p.AvgPrecisionLastRound, p.AvgPrecisionLastRoundPercentage = rate(last)
	}

	out := make([]domain.HistoryPoint, 0, len(points))
	for _, p := range points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func rate(m mean) (float64, float64) {
	r := evaluation.NewRate(m.value())
	return r.Exact, r.Percentage
}
