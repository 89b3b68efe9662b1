package domain

const (
	MaxGenreScore = 2
	MaxScore      = MaxGenreScore + 5
)

// CriteriaScores is the per-criterion breakdown of a relevance score.
type CriteriaScores struct {
	Genres           int `json:"genres"`
	Type             int `json:"type"`
	Mood             int `json:"mood"`
	TimeAvailability int `json:"timeAvailability"`
	PreferredAge     int `json:"preferredAge"`
	TargetGroup      int `json:"targetGroup"`
}

func (c CriteriaScores) Sum() int {
	return c.Genres + c.Type + c.Mood + c.TimeAvailability + c.PreferredAge + c.TargetGroup
}

// Map exposes the scores under their wire names.
func (c CriteriaScores) Map() map[string]int64 {
	return map[string]int64{
		"genres":           int64(c.Genres),
		"type":             int64(c.Type),
		"mood":             int64(c.Mood),
		"timeAvailability": int64(c.TimeAvailability),
		"preferredAge":     int64(c.PreferredAge),
		"targetGroup":      int64(c.TargetGroup),
	}
}

type Verdict struct {
	IsRelevant     bool           `json:"isRelevant"`
	RelevanceScore int            `json:"relevanceScore"`
	CriteriaScores CriteriaScores `json:"criteriaScores"`
}

// ItemVerdict pairs a verdict with the item it was computed for.
type ItemVerdict struct {
	ID      string  `json:"imdbID"`
	Title   string  `json:"title,omitempty"`
	Verdict Verdict `json:"verdict"`
}
