package db

import (
	"database/sql"
	"strings"

	json "github.com/goccy/go-json"

	model "mindreel/relevance/internal/model/db"
	"mindreel/relevance/internal/model/domain"
)

func toItem(r model.RecommendationRow) domain.RecommendationItem {
	return domain.RecommendationItem{
		ID:      r.ImdbID.String,
		Title:   r.Title.String,
		Genres:  splitColumn(r.Genre),
		Type:    r.Type.String,
		Runtime: r.Runtime.String,
		Year:    r.Year.String,
		Rated:   r.Rated.String,
	}
}

// toItems drops rows without an identifier; they cannot be told apart.
func toItems(rows []model.RecommendationRow) []domain.RecommendationItem {
	items := make([]domain.RecommendationItem, 0, len(rows))
	for _, r := range rows {
		if r.ImdbID.String == "" {
			continue
		}
		items = append(items, toItem(r))
	}
	return items
}

func toProfile(r model.PreferencesRow) domain.PreferenceProfile {
	return domain.PreferenceProfile{
		Genres:           splitColumn(r.Genres),
		Moods:            splitColumn(r.Mood),
		Types:            splitColumn(r.PreferredType),
		TimeAvailability: splitColumn(r.TimeAvailability),
		PreferredAge:     splitColumn(r.PreferredAge),
		TargetGroups:     splitColumn(r.TargetGroup),
		Actors:           splitColumn(r.Actors),
		Directors:        splitColumn(r.Directors),
		Countries:        splitColumn(r.Countries),
		Pacing:           r.Pacing.String,
		Depth:            r.Depth.String,
		Interests:        r.Interests.String,
		Date:             r.Date,
	}
}

// splitColumn splits a comma-separated column into trimmed, non-empty values.
func splitColumn(s sql.NullString) []string {
	if !s.Valid {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s.String, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// rottenTomatoes picks the Rotten Tomatoes value ("87%") out of the ratings JSON.
func rottenTomatoes(raw sql.NullString) string {
	if !raw.Valid || raw.String == "" {
		return ""
	}
	var ratings []rating
	if err := json.Unmarshal([]byte(raw.String), &ratings); err != nil {
		return ""
	}
	for _, r := range ratings {
		if r.Source == "Rotten Tomatoes" {
			return r.Value
		}
	}
	return ""
}

func toProsperitySource(r model.ProsperityRow) domain.ProsperitySource {
	return domain.ProsperitySource{
		ID:             r.ImdbID,
		Title:          r.Title.String,
		Director:       r.Director.String,
		Writer:         r.Writer.String,
		Actors:         r.Actors.String,
		IMDbRating:     r.ImdbRating.String,
		Metascore:      r.Metascore.String,
		BoxOffice:      r.BoxOffice.String,
		Awards:         r.Awards.String,
		RottenTomatoes: rottenTomatoes(r.Ratings),
	}
}
