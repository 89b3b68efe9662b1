package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"mindreel/relevance/internal/config"
	"mindreel/relevance/internal/logging"
	"mindreel/relevance/internal/metrics"
	model "mindreel/relevance/internal/model/db"
	"mindreel/relevance/internal/model/domain"
)

//go:embed schema.sql
var schema string

type DB struct {
	db      *sqlx.DB
	breaker *breaker
}

func New(cfg config.DatabaseConfig, bcfg config.BreakerConfig) (*DB, error) {
	conn, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxConnections)
	conn.SetMaxIdleConns(cfg.MaxConnections / 2)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return NewWithConn(conn, bcfg), nil
}

// NewWithConn wraps an existing connection pool.
func NewWithConn(conn *sqlx.DB, bcfg config.BreakerConfig) *DB {
	return &DB{db: conn, breaker: newBreaker(bcfg)}
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.run("ping", func() error {
		return db.db.PingContext(ctx)
	})
}

// Migrate creates the tables owned by this service.
func (db *DB) Migrate(ctx context.Context) error {
	return db.run("migrate", func() error {
		_, err := db.db.ExecContext(ctx, schema)
		return err
	})
}

const (
	distinctPlatformQuery = `
	SELECT DISTINCT ON (imdb_id) imdb_id, title_en, genre_en, type, runtime, year, rated
	FROM movies_series_recommendations
	WHERE imdb_id IS NOT NULL AND imdb_id <> ''
	ORDER BY imdb_id, date DESC`

	distinctUserQuery = `
	SELECT DISTINCT ON (imdb_id) imdb_id, title_en, genre_en, type, runtime, year, rated
	FROM movies_series_recommendations
	WHERE user_id = $1 AND imdb_id IS NOT NULL AND imdb_id <> ''
	ORDER BY imdb_id, date DESC`
)

func (db *DB) DistinctRecommendations(ctx context.Context, userID *int64) ([]domain.RecommendationItem, error) {
	var rows []model.RecommendationRow
	err := db.run("distinct_recommendations", func() error {
		if userID == nil {
			return db.db.SelectContext(ctx, &rows, distinctPlatformQuery)
		}
		return db.db.SelectContext(ctx, &rows, distinctUserQuery, *userID)
	})
	if err != nil {
		return nil, err
	}

	return toItems(rows), nil
}

func (db *DB) LastPreferences(ctx context.Context, userID int64) (domain.PreferenceProfile, error) {
	query := `
	SELECT user_id, preferred_genres_en, mood, time_availability, preferred_age, preferred_type,
	       preferred_actors, preferred_directors, preferred_countries, preferred_pacing,
	       preferred_depth, preferred_target_group, interests, date
	FROM movies_series_user_preferences
	WHERE user_id = $1 AND COALESCE(preferred_genres_en, '') <> ''
	ORDER BY date DESC
	LIMIT 1`

	var row model.PreferencesRow
	err := db.run("last_preferences", func() error {
		return db.db.GetContext(ctx, &row, query, userID)
	})
	if err != nil {
		return domain.PreferenceProfile{}, err
	}
	return toProfile(row), nil
}

func (db *DB) GeneratedRecommendations(ctx context.Context, userID int64, at time.Time) ([]domain.RecommendationItem, error) {
	query := `
	SELECT imdb_id, title_en, genre_en, type, runtime, year, rated
	FROM movies_series_recommendations
	WHERE user_id = $1 AND date = $2 AND imdb_id IS NOT NULL AND imdb_id <> ''`

	var rows []model.RecommendationRow
	err := db.run("generated_recommendations", func() error {
		return db.db.SelectContext(ctx, &rows, query, userID, at)
	})
	if err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

// SaveMetric appends a metric row unless the latest stored value for
// (user, family) is exactly equal. The read and the insert run in one
// transaction holding an advisory lock on the key, so concurrent callers
// cannot both append the same value.
func (db *DB) SaveMetric(ctx context.Context, userID int64, family domain.Family, rate domain.Rate, counts domain.Confusion) (domain.WriteOutcome, error) {
	payload, err := json.Marshal(counts)
	if err != nil {
		return domain.WriteOutcome{}, fmt.Errorf("encode metric counts: %w", err)
	}

	var out domain.WriteOutcome
	err = db.run("save_metric", func() error {
		tx, err := db.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey(userID, family)); err != nil {
			return fmt.Errorf("lock metric key: %w", err)
		}

		var last float64
		err = tx.GetContext(ctx, &last, `
		SELECT value_exact
		FROM recommendation_metrics
		WHERE user_id = $1 AND stats_type = $2
		ORDER BY date DESC, id DESC
		LIMIT 1`, userID, string(family))
		switch {
		case err == nil && last == rate.Exact:
			out = domain.WriteOutcome{Message: fmt.Sprintf("%s unchanged since last record, nothing stored", family)}
			return tx.Commit()
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("read last %s: %w", family, err)
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO recommendation_metrics
			(user_id, stats_type, value_exact, value_fixed, value_percentage, counts, date)
		VALUES ($1, $2, $3, $4, $5, $6, clock_timestamp())`,
			userID, string(family), rate.Exact, rate.Fixed, rate.Percentage, payload)
		if err != nil {
			return fmt.Errorf("insert %s: %w", family, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		out = domain.WriteOutcome{Written: true, Message: fmt.Sprintf("%s stored", family)}
		return nil
	})
	if err != nil {
		return domain.WriteOutcome{}, err
	}

	logging.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Str("family", string(family)).
		Bool("written", out.Written).
		Msg(out.Message)
	return out, nil
}

func lockKey(userID int64, family domain.Family) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s", userID, family)
	return int64(h.Sum64())
}

type relevantEntry struct {
	ID    string `json:"imdbID"`
	Title string `json:"title,omitempty"`
	Score int    `json:"relevanceScore"`
}

func (db *DB) SaveAnalysis(ctx context.Context, a domain.Analysis) error {
	entries := make([]relevantEntry, 0, len(a.Relevant))
	for _, v := range a.Relevant {
		entries = append(entries, relevantEntry{ID: v.ID, Title: v.Title, Score: v.Verdict.RelevanceScore})
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode relevant recommendations: %w", err)
	}

	return db.run("save_analysis", func() error {
		_, err := db.db.ExecContext(ctx, `
		INSERT INTO recommendation_analysis
			(user_id, relevant_count, total_count, precision_value, precision_percentage, relevant_recommendations, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.UserID, a.RelevantCount, a.TotalCount, a.Precision.Exact, a.Precision.Percentage, payload, a.Date)
		return err
	})
}

// historyFamilies are read for the historical views. Every family counts
// towards the set of dates even though only precision, recall and f1 are averaged.
var historyFamilies = []string{
	string(domain.FamilyPrecision),
	string(domain.FamilyRecall),
	string(domain.FamilyF1),
	string(domain.FamilyAccuracy),
	string(domain.FamilySpecificity),
	string(domain.FamilyFNR),
	string(domain.FamilyFPR),
}

func (db *DB) MetricRecords(ctx context.Context, userID *int64) ([]domain.MetricPoint, error) {
	base := `SELECT id, user_id, stats_type, value_exact, value_fixed, value_percentage, counts, date
	FROM recommendation_metrics
	WHERE stats_type IN (?)`
	args := []any{historyFamilies}
	if userID != nil {
		base += ` AND user_id = ?`
		args = append(args, *userID)
	}
	base += ` ORDER BY date, id`

	query, qargs, err := sqlx.In(base, args...)
	if err != nil {
		return nil, fmt.Errorf("build metric records query: %w", err)
	}
	query = db.db.Rebind(query)

	var rows []model.MetricRecord
	err = db.run("metric_records", func() error {
		return db.db.SelectContext(ctx, &rows, query, qargs...)
	})
	if err != nil {
		return nil, err
	}

	points := make([]domain.MetricPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.MetricPoint{
			Family: domain.Family(r.StatsType),
			Exact:  r.ValueExact,
			Date:   r.Date,
		})
	}
	return points, nil
}

func (db *DB) AnalysisRecords(ctx context.Context, userID *int64) ([]domain.AnalysisPoint, error) {
	query := `SELECT id, user_id, relevant_count, total_count, precision_value, precision_percentage,
	       relevant_recommendations, date
	FROM recommendation_analysis`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY date, id`

	var rows []model.AnalysisRecord
	err := db.run("analysis_records", func() error {
		return db.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, err
	}

	points := make([]domain.AnalysisPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.AnalysisPoint{Precision: r.PrecisionValue, Date: r.Date})
	}
	return points, nil
}

// ProsperitySource returns every recommendation row, repeats included, with
// its enrichment columns.
func (db *DB) ProsperitySource(ctx context.Context) ([]domain.ProsperitySource, error) {
	query := `
	SELECT imdb_id, title_en, director, writer, actors, imdb_rating, metascore, box_office, awards, ratings
	FROM movies_series_recommendations
	WHERE imdb_id IS NOT NULL AND imdb_id <> ''`

	var out []domain.ProsperitySource
	err := db.run("prosperity_source", func() error {
		rows, err := db.db.QueryxContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query prosperity source: %w", err)
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var r model.ProsperityRow
			if err := rows.StructScan(&r); err != nil {
				return fmt.Errorf("scan prosperity row: %w", err)
			}
			out = append(out, toProsperitySource(r))
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate prosperity rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// run executes fn through the circuit breaker, records timing and maps
// failures to domain errors.
func (db *DB) run(op string, fn func() error) error {
	start := time.Now()
	err := db.breaker.execute(fn)
	metrics.RecordDBQuery(op, time.Since(start), err)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.NewError(domain.ModuleStore, domain.CodeNotFound, op+": no rows", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	logging.Error().Err(err).Str("operation", op).Msg("store operation failed")
	return domain.StorageError(op+" failed", err)
}
