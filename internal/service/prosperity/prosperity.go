package prosperity

import (
	"context"
	"fmt"
	"sort"

	"mindreel/relevance/internal/config"
	"mindreel/relevance/internal/model/domain"
)

// Source returns every stored recommendation row with its enrichment data.
type Source interface {
	ProsperitySource(ctx context.Context) ([]domain.ProsperitySource, error)
}

type Ranker struct {
	source  Source
	parser  AwardsParser
	weights config.Weights
	limit   int
}

func New(source Source, cfg config.ProsperityConfig) *Ranker {
	return &Ranker{
		source:  source,
		parser:  LexicalParser{},
		weights: cfg.Weights,
		limit:   cfg.Limit,
	}
}

// WithParser swaps the awards parser.
func (r *Ranker) WithParser(p AwardsParser) *Ranker {
	r.parser = p
	return r
}

// Calculate sets row.Score from the row's aggregates. NormalizedBoxOffice
// must already be filled in.
func (r *Ranker) Calculate(row *domain.ProsperityRow) {
	w := r.weights
	score := w.Wins*float64(row.Wins) +
		w.Nominations*float64(row.Nominations) +
		w.BoxOffice*row.NormalizedBoxOffice +
		w.Metascore*row.AvgMetascore +
		w.IMDb*row.AvgIMDbRating +
		w.RottenTomatoes*row.AvgRottenTomatoes

	row.Score = round2(score)
}

type aggregate struct {
	name      string
	movies    map[string]struct{}
	recs      int
	wins      int
	noms      int
	boxOffice float64
	imdb      mean
	metascore mean
	rotten    mean
}

// Rank orders every entity of kind by prosperity score, highest first.
// Equal scores are ordered by entity name.
func (r *Ranker) Rank(ctx context.Context, kind domain.EntityKind) ([]domain.ProsperityRow, error) {
	kind, err := domain.ParseEntityKind(string(kind))
	if err != nil {
		return nil, err
	}
	sources, err := r.source.ProsperitySource(ctx)
	if err != nil {
		return nil, fmt.Errorf("read prosperity source: %w", err)
	}
	return r.rank(kind, sources), nil
}

func (r *Ranker) rank(kind domain.EntityKind, sources []domain.ProsperitySource) []domain.ProsperityRow {
	aggs := make(map[string]*aggregate)
	for _, src := range sources {
		for _, ent := range entities(kind, src) {
			agg, ok := aggs[ent.key]
			if !ok {
				agg = &aggregate{name: ent.name, movies: make(map[string]struct{})}
				aggs[ent.key] = agg
			}
			agg.recs++

			// Repeat recommendations of one title count once towards the aggregates.
			if _, seen := agg.movies[src.ID]; seen {
				continue
			}
			agg.movies[src.ID] = struct{}{}

			awards := r.parser.Parse(src.Awards)
			agg.wins += awards.Wins
			agg.noms += awards.Nominations

			box, _ := parseBoxOffice(src.BoxOffice)
			agg.boxOffice += box

			agg.imdb.add(parseNumber(src.IMDbRating))
			agg.metascore.add(parseNumber(src.Metascore))
			agg.rotten.add(parsePercent(src.RottenTomatoes))
		}
	}

	rows := make([]domain.ProsperityRow, 0, len(aggs))
	highest := 0.0
	for _, agg := range aggs {
		highest = max(highest, agg.boxOffice)
		rows = append(rows, domain.ProsperityRow{
			Entity:               agg.name,
			Kind:                 kind,
			Movies:               len(agg.movies),
			TotalRecommendations: agg.recs,
			Wins:                 agg.wins,
			Nominations:          agg.noms,
			BoxOffice:            agg.boxOffice,
			AvgIMDbRating:        round2(agg.imdb.value()),
			AvgMetascore:         round2(agg.metascore.value()),
			AvgRottenTomatoes:    round2(agg.rotten.value()),
		})
	}

	for i := range rows {
		rows[i].NormalizedBoxOffice = boxOfficeNormalization(rows[i].BoxOffice, highest)
		r.Calculate(&rows[i])
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Entity < rows[j].Entity
	})

	if r.limit > 0 && len(rows) > r.limit {
		rows = rows[:r.limit]
	}
	return rows
}

// AwardTotals sums the awards of every distinct recommended title.
func (r *Ranker) AwardTotals(ctx context.Context) (domain.AwardTotals, error) {
	sources, err := r.source.ProsperitySource(ctx)
	if err != nil {
		return domain.AwardTotals{}, fmt.Errorf("read prosperity source: %w", err)
	}

	var t domain.AwardTotals
	seen := make(map[string]struct{})
	for _, src := range sources {
		if _, dup := seen[src.ID]; dup || src.ID == "" {
			continue
		}
		seen[src.ID] = struct{}{}

		a := r.parser.Parse(src.Awards)
		t.Movies++
		t.Wins += a.Wins
		t.Nominations += a.Nominations
		t.OscarWins += a.OscarWins
		t.OscarNominations += a.OscarNominations
	}
	return t, nil
}
