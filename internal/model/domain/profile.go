package domain

import "time"

// PreferenceProfile is the set of answers a user gave before a generation.
// Multi-valued fields hold one entry per selected option.
type PreferenceProfile struct {
	Genres           []string  `json:"genres"`
	Moods            []string  `json:"moods"`
	Types            []string  `json:"types"`
	TimeAvailability []string  `json:"timeAvailability"`
	PreferredAge     []string  `json:"preferredAge"`
	TargetGroups     []string  `json:"targetGroups"`
	Actors           []string  `json:"actors,omitempty"`
	Directors        []string  `json:"directors,omitempty"`
	Countries        []string  `json:"countries,omitempty"`
	Pacing           string    `json:"pacing,omitempty"`
	Depth            string    `json:"depth,omitempty"`
	Interests        string    `json:"interests,omitempty"`
	Date             time.Time `json:"date"`
}

// RecommendationItem is one enriched movie or series shown to a user.
type RecommendationItem struct {
	ID      string   `json:"imdbID"`
	Title   string   `json:"title,omitempty"`
	Genres  []string `json:"genres"`
	Type    string   `json:"type"`
	Runtime string   `json:"runtime"`
	Year    string   `json:"year"`
	Rated   string   `json:"rated"`
	Moods   []string `json:"moods,omitempty"`
}

// Distinct keeps the first occurrence of every item ID. Items without an ID
// are dropped since they cannot be told apart.
func Distinct(items []RecommendationItem) []RecommendationItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]RecommendationItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
