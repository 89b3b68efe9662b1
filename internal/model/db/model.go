package db

import (
	"database/sql"
	"time"
)

// RecommendationRow is a row of movies_series_recommendations as read for classification.
type RecommendationRow struct {
	ImdbID  sql.NullString `db:"imdb_id"`
	Title   sql.NullString `db:"title_en"`
	Genre   sql.NullString `db:"genre_en"` // "Drama, Thriller"
	Type    sql.NullString `db:"type"`
	Runtime sql.NullString `db:"runtime"` // "148 min"
	Year    sql.NullString `db:"year"`    // "2010" or "2008–2013"
	Rated   sql.NullString `db:"rated"`
}

// PreferencesRow is a row of movies_series_user_preferences. List columns
// hold comma-separated answers.
type PreferencesRow struct {
	UserID           int64          `db:"user_id"`
	Genres           sql.NullString `db:"preferred_genres_en"`
	Mood             sql.NullString `db:"mood"`
	TimeAvailability sql.NullString `db:"time_availability"`
	PreferredAge     sql.NullString `db:"preferred_age"`
	PreferredType    sql.NullString `db:"preferred_type"`
	Actors           sql.NullString `db:"preferred_actors"`
	Directors        sql.NullString `db:"preferred_directors"`
	Countries        sql.NullString `db:"preferred_countries"`
	Pacing           sql.NullString `db:"preferred_pacing"`
	Depth            sql.NullString `db:"preferred_depth"`
	TargetGroup      sql.NullString `db:"preferred_target_group"`
	Interests        sql.NullString `db:"interests"`
	Date             time.Time      `db:"date"`
}

// MetricRecord is one row of recommendation_metrics.
type MetricRecord struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	StatsType       string    `db:"stats_type"`
	ValueExact      float64   `db:"value_exact"`
	ValueFixed      float64   `db:"value_fixed"`
	ValuePercentage float64   `db:"value_percentage"`
	Counts          []byte    `db:"counts"` // JSONB
	Date            time.Time `db:"date"`
}

// AnalysisRecord is one row of recommendation_analysis.
type AnalysisRecord struct {
	ID                      int64     `db:"id"`
	UserID                  int64     `db:"user_id"`
	RelevantCount           int       `db:"relevant_count"`
	TotalCount              int       `db:"total_count"`
	PrecisionValue          float64   `db:"precision_value"`
	PrecisionPercentage     float64   `db:"precision_percentage"`
	RelevantRecommendations []byte    `db:"relevant_recommendations"` // JSONB
	Date                    time.Time `db:"date"`
}

// ProsperityRow carries the enrichment columns used for prosperity ranking.
type ProsperityRow struct {
	ImdbID     string         `db:"imdb_id"`
	Title      sql.NullString `db:"title_en"`
	Director   sql.NullString `db:"director"`
	Writer     sql.NullString `db:"writer"`
	Actors     sql.NullString `db:"actors"`
	ImdbRating sql.NullString `db:"imdb_rating"` // "8.5"
	Metascore  sql.NullString `db:"metascore"`   // "74" or "N/A"
	BoxOffice  sql.NullString `db:"box_office"`  // "$292,587,330"
	Awards     sql.NullString `db:"awards"`
	Ratings    sql.NullString `db:"ratings"` // JSON array of {Source, Value}
}
