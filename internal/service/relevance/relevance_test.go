package relevance

import (
	"testing"

	"mindreel/relevance/internal/model/domain"
)

func TestClassifyCalmDramaMatchesThreeCriteria(t *testing.T) {
	c := New()
	profile := domain.PreferenceProfile{
		Genres: []string{"Drama"},
		Types:  []string{"movie"},
		Moods:  []string{"Calm"},
	}
	item := domain.RecommendationItem{
		ID:     "tt0111161",
		Genres: []string{"Drama, Thriller"},
		Type:   "movie",
		Moods:  []string{"Calm"},
	}

	v := c.Classify(profile, item)
	want := domain.CriteriaScores{Genres: 1, Type: 1, Mood: 1}
	if v.CriteriaScores != want {
		t.Errorf("CriteriaScores = %+v, want %+v", v.CriteriaScores, want)
	}
	if v.RelevanceScore != 3 {
		t.Errorf("RelevanceScore = %d, want 3", v.RelevanceScore)
	}
	if v.IsRelevant {
		t.Error("IsRelevant = true, want false below default threshold")
	}
}

func TestClassifyFullMatchReachesMaxScore(t *testing.T) {
	c := New(WithReferenceYear(2025))
	profile := domain.PreferenceProfile{
		Genres:           []string{"Crime", "Drama", "Mystery"},
		Types:            []string{"Филм"},
		Moods:            []string{"Напрегнат"},
		TimeAvailability: []string{"3 hours"},
		PreferredAge:     []string{"2000-2010"},
		TargetGroups:     []string{"Възрастни"},
	}
	item := domain.RecommendationItem{
		ID:      "tt0468569",
		Genres:  []string{"Action, Crime, Drama"},
		Type:    "movie",
		Runtime: "152 min",
		Year:    "2008",
		Rated:   "PG-13",
	}

	v := c.Classify(profile, item)
	if v.RelevanceScore != domain.MaxScore {
		t.Errorf("RelevanceScore = %d (%+v), want %d", v.RelevanceScore, v.CriteriaScores, domain.MaxScore)
	}
	if v.CriteriaScores.Genres != domain.MaxGenreScore {
		t.Errorf("Genres = %d, want cap %d", v.CriteriaScores.Genres, domain.MaxGenreScore)
	}
	if !v.IsRelevant {
		t.Error("IsRelevant = false, want true")
	}
}

func TestClassifyIsTotalOnEmptyInput(t *testing.T) {
	c := New()
	tests := []struct {
		name    string
		profile domain.PreferenceProfile
		item    domain.RecommendationItem
	}{
		{"both empty", domain.PreferenceProfile{}, domain.RecommendationItem{}},
		{"empty item", domain.PreferenceProfile{Genres: []string{"Drama"}, Types: []string{"any"}}, domain.RecommendationItem{}},
		{"n/a fields", domain.PreferenceProfile{Types: []string{"any"}, TargetGroups: []string{"kids"}},
			domain.RecommendationItem{Type: "N/A", Rated: "N/A", Runtime: "N/A", Year: "N/A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Classify(tt.profile, tt.item)
			if v.RelevanceScore != 0 || v.IsRelevant {
				t.Errorf("Classify() = %+v, want zero verdict", v)
			}
		})
	}
}

func TestClassifyScoreBounds(t *testing.T) {
	c := New(WithReferenceYear(2025))
	profiles := []domain.PreferenceProfile{
		{},
		{Genres: []string{"Drama", "Drama", "drama"}},
		{Genres: []string{"Comedy", "Romance", "Drama", "Action"}, Moods: []string{"any"}, Types: []string{"all"},
			TimeAvailability: []string{"any"}, PreferredAge: []string{"any"}, TargetGroups: []string{"any"}},
	}
	items := []domain.RecommendationItem{
		{},
		{Genres: []string{"Comedy, Romance, Drama, Action"}, Type: "series", Runtime: "45 min", Year: "2019–", Rated: "TV-14"},
		{Genres: []string{"Drama"}},
	}
	for _, p := range profiles {
		for _, it := range items {
			v := c.Classify(p, it)
			if v.RelevanceScore < 0 || v.RelevanceScore > domain.MaxScore {
				t.Errorf("RelevanceScore = %d outside [0,%d]", v.RelevanceScore, domain.MaxScore)
			}
			if v.RelevanceScore != v.CriteriaScores.Sum() {
				t.Errorf("RelevanceScore = %d, criteria sum %d", v.RelevanceScore, v.CriteriaScores.Sum())
			}
		}
	}
	dup := c.Classify(profiles[1], items[2])
	if dup.CriteriaScores.Genres != 1 {
		t.Errorf("repeated genre preference scored %d, want 1", dup.CriteriaScores.Genres)
	}
}

func TestMoodFromGenres(t *testing.T) {
	c := New()
	profile := domain.PreferenceProfile{Moods: []string{"Curious", "sad"}}
	if got := c.Classify(profile, domain.RecommendationItem{Genres: []string{"Documentary"}}).CriteriaScores.Mood; got != 1 {
		t.Errorf("documentary mood = %d, want 1", got)
	}
	if got := c.Classify(profile, domain.RecommendationItem{Genres: []string{"Comedy"}}).CriteriaScores.Mood; got != 0 {
		t.Errorf("comedy mood = %d, want 0", got)
	}
	explicit := domain.RecommendationItem{Genres: []string{"Documentary"}, Moods: []string{"Happy"}}
	if got := c.Classify(profile, explicit).CriteriaScores.Mood; got != 0 {
		t.Errorf("explicit mood should override genre moods, got %d", got)
	}
}

func TestGenreWildcard(t *testing.T) {
	drama := []string{"Drama, Crime"}
	tests := []struct {
		prefs  []string
		genres []string
		want   int
	}{
		{[]string{"any"}, drama, 1},
		{[]string{"Без значение"}, drama, 1},
		{[]string{"any", "drama"}, drama, 1},
		{[]string{"any", "drama", "crime"}, drama, 2},
		{[]string{"any"}, nil, 0},
		{[]string{"comedy"}, drama, 0},
	}
	for _, tt := range tests {
		if got := genreScore(tt.prefs, tt.genres); got != tt.want {
			t.Errorf("genreScore(%q, %q) = %d, want %d", tt.prefs, tt.genres, got, tt.want)
		}
	}
}

func TestTimeMatches(t *testing.T) {
	tests := []struct {
		pref, runtime string
		want          bool
	}{
		{"short", "85 min", true},
		{"short", "120 min", false},
		{"medium", "150 min", true},
		{"long", "240 min", true},
		{"2 hours", "119 min", true},
		{"2 hours", "121 min", false},
		{"1-2 часа", "110 min", true},
		{"90 min", "95 min", false},
		{"3+ hours", "400 min", true},
		{"2 hours", "1h 45min", true},
		{"2 hours", "", false},
		{"whenever", "90 min", false},
	}
	for _, tt := range tests {
		if got := timeMatches(normalize(tt.pref), normalize(tt.runtime)); got != tt.want {
			t.Errorf("timeMatches(%q, %q) = %v, want %v", tt.pref, tt.runtime, got, tt.want)
		}
	}
}

func TestAgeBracket(t *testing.T) {
	c := New(WithReferenceYear(2025))
	tests := []struct {
		pref, year string
		want       bool
	}{
		{"new", "2022", true},
		{"new", "2015", false},
		{"recent", "2012", true},
		{"classic", "1972", true},
		{"classic", "2012", false},
		{"1990-2000", "1994", true},
		{"1990-2000", "2001", false},
		{"90s", "1999", true},
		{"2010s", "2020", false},
		{"before 2000", "1999", true},
		{"before 2000", "2000", false},
		{"after 2015", "2016", true},
		{"след 2015", "2015", false},
		{"last 10 years", "2016", true},
		{"2008", "2008–2013", true},
		{"new", "", false},
	}
	for _, tt := range tests {
		if got := c.ageMatches(normalize(tt.pref), normalize(tt.year)); got != tt.want {
			t.Errorf("ageMatches(%q, %q) = %v, want %v", tt.pref, tt.year, got, tt.want)
		}
	}
}

func TestAudienceMatches(t *testing.T) {
	tests := []struct {
		pref, rated string
		want        bool
	}{
		{"kids", "g", true},
		{"деца", "tv-y7", true},
		{"kids", "r", false},
		{"teens", "pg-13", true},
		{"adults", "tv-ma", true},
		{"family", "not rated", false},
		{"friends", "pg", false},
	}
	for _, tt := range tests {
		if got := audienceMatches(tt.pref, tt.rated); got != tt.want {
			t.Errorf("audienceMatches(%q, %q) = %v, want %v", tt.pref, tt.rated, got, tt.want)
		}
	}
}

func TestTypeMatches(t *testing.T) {
	c := New()
	profile := domain.PreferenceProfile{Types: []string{"Сериал"}}
	if got := c.Classify(profile, domain.RecommendationItem{Type: "series"}).CriteriaScores.Type; got != 1 {
		t.Errorf("series type = %d, want 1", got)
	}
	if got := c.Classify(profile, domain.RecommendationItem{Type: "movie"}).CriteriaScores.Type; got != 0 {
		t.Errorf("movie type = %d, want 0", got)
	}
	wild := domain.PreferenceProfile{Types: []string{"Без значение"}}
	if got := c.Classify(wild, domain.RecommendationItem{Type: "movie"}).CriteriaScores.Type; got != 1 {
		t.Errorf("wildcard type = %d, want 1", got)
	}
}

func TestClassifyAllAndCount(t *testing.T) {
	c := New(WithPolicy(ThresholdPolicy{Min: 2}))
	profile := domain.PreferenceProfile{Genres: []string{"Drama", "Crime"}}
	items := []domain.RecommendationItem{
		{ID: "a", Genres: []string{"Drama, Crime"}},
		{ID: "b", Genres: []string{"Drama"}},
		{ID: "c", Genres: []string{"Crime, Drama, Thriller"}},
	}
	verdicts := c.ClassifyAll(profile, items)
	if len(verdicts) != 3 || verdicts[1].ID != "b" {
		t.Fatalf("ClassifyAll() = %+v", verdicts)
	}
	if got := c.CountRelevant(profile, items); got != 2 {
		t.Errorf("CountRelevant() = %d, want 2", got)
	}
}
