package domain

type EntityKind string

const (
	EntityMovie    EntityKind = "movie"
	EntityDirector EntityKind = "director"
	EntityActor    EntityKind = "actor"
	EntityWriter   EntityKind = "writer"
)

func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case EntityMovie, EntityDirector, EntityActor, EntityWriter:
		return EntityKind(s), nil
	case "movies":
		return EntityMovie, nil
	case "directors":
		return EntityDirector, nil
	case "actors":
		return EntityActor, nil
	case "writers":
		return EntityWriter, nil
	}
	return "", NewError(ModuleProsperity, CodeUnknownEntityKind, "unknown entity kind "+s, nil)
}

// ProsperitySource is one stored recommendation row with the raw enrichment
// fields used for ranking. Values are kept as the text the enrichment API returned.
type ProsperitySource struct {
	ID             string
	Title          string
	Director       string
	Writer         string
	Actors         string
	IMDbRating     string
	Metascore      string
	BoxOffice      string
	Awards         string
	RottenTomatoes string
}

// Awards is what the parser could extract from an awards sentence.
type Awards struct {
	Wins             int `json:"wins"`
	Nominations      int `json:"nominations"`
	OscarWins        int `json:"oscar_wins"`
	OscarNominations int `json:"oscar_nominations"`
}

type ProsperityRow struct {
	Entity               string     `json:"entity"`
	Kind                 EntityKind `json:"kind"`
	Movies               int        `json:"movies_count"`
	TotalRecommendations int        `json:"total_recommendations"`
	Wins                 int        `json:"total_wins"`
	Nominations          int        `json:"total_nominations"`
	BoxOffice            float64    `json:"total_box_office"`
	NormalizedBoxOffice  float64    `json:"normalized_box_office"`
	AvgIMDbRating        float64    `json:"avg_imdb_rating"`
	AvgMetascore         float64    `json:"avg_metascore"`
	AvgRottenTomatoes    float64    `json:"avg_rotten_tomatoes"`
	Score                float64    `json:"prosperity_score"`
}

type AwardTotals struct {
	Movies int `json:"movies_count"`
	Awards
}
