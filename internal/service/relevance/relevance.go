package relevance

import (
	"time"

	"mindreel/relevance/internal/model/domain"
)

const DefaultThreshold = 4

// Classifier scores recommendation items against a preference profile.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	policy  Policy
	refYear int
}

type Option func(*Classifier)

func WithPolicy(p Policy) Option {
	return func(c *Classifier) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithReferenceYear anchors relative age brackets ("new", "classic") to year.
func WithReferenceYear(year int) Option {
	return func(c *Classifier) {
		if year > 0 {
			c.refYear = year
		}
	}
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		policy:  ThresholdPolicy{Min: DefaultThreshold},
		refYear: time.Now().Year(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never fails: absent profile or item fields score zero.
func (c *Classifier) Classify(profile domain.PreferenceProfile, item domain.RecommendationItem) domain.Verdict {
	scores := domain.CriteriaScores{
		Genres:           genreScore(profile.Genres, item.Genres),
		Type:             c.match(profile.Types, item.Type, typeMatches),
		Mood:             moodScore(profile.Moods, item),
		TimeAvailability: c.match(profile.TimeAvailability, item.Runtime, timeMatches),
		PreferredAge:     c.match(profile.PreferredAge, item.Year, c.ageMatches),
		TargetGroup:      c.match(profile.TargetGroups, item.Rated, audienceMatches),
	}

	score := scores.Sum()
	return domain.Verdict{
		IsRelevant:     c.policy.Relevant(score, scores),
		RelevanceScore: score,
		CriteriaScores: scores,
	}
}

func (c *Classifier) ClassifyAll(profile domain.PreferenceProfile, items []domain.RecommendationItem) []domain.ItemVerdict {
	out := make([]domain.ItemVerdict, 0, len(items))
	for _, it := range items {
		out = append(out, domain.ItemVerdict{
			ID:      it.ID,
			Title:   it.Title,
			Verdict: c.Classify(profile, it),
		})
	}
	return out
}

// CountRelevant returns how many items the profile finds relevant.
func (c *Classifier) CountRelevant(profile domain.PreferenceProfile, items []domain.RecommendationItem) int {
	n := 0
	for _, it := range items {
		if c.Classify(profile, it).IsRelevant {
			n++
		}
	}
	return n
}

// match scores 1 when any preference accepts the item value.
func (c *Classifier) match(prefs []string, value string, accepts func(pref, value string) bool) int {
	value = normalize(value)
	if value == "" || value == "n/a" {
		return 0
	}
	for _, p := range prefs {
		p = normalize(p)
		if p == "" {
			continue
		}
		if isWildcard(p) || accepts(p, value) {
			return 1
		}
	}
	return 0
}

func genreScore(prefs, genres []string) int {
	have := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		for _, part := range splitList(g) {
			have[canonicalGenre(part)] = struct{}{}
		}
	}

	score, wildcard := 0, false
	seen := make(map[string]struct{}, len(prefs))
	for _, p := range prefs {
		g := canonicalGenre(normalize(p))
		if g == "" {
			continue
		}
		if isWildcard(g) {
			wildcard = true
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		if _, ok := have[g]; ok {
			score++
		}
	}
	// A wildcard answer is worth one matching genre.
	if wildcard && len(have) > 0 {
		score = max(score, 1)
	}
	return min(score, domain.MaxGenreScore)
}

func moodScore(prefs []string, item domain.RecommendationItem) int {
	moods := itemMoods(item)
	if len(moods) == 0 {
		return 0
	}
	for _, p := range prefs {
		p = normalize(p)
		if p == "" {
			continue
		}
		if isWildcard(p) {
			return 1
		}
		if _, ok := moods[canonicalMood(p)]; ok {
			return 1
		}
	}
	return 0
}

func typeMatches(pref, value string) bool {
	return canonicalType(pref) == canonicalType(value)
}

func timeMatches(pref, value string) bool {
	runtime := runtimeMinutes(value)
	if runtime <= 0 {
		return false
	}
	budget, ok := timeBudget(pref)
	return ok && runtime <= budget
}

func (c *Classifier) ageMatches(pref, value string) bool {
	year, ok := firstYear(value)
	if !ok {
		return false
	}
	lo, hi, ok := ageBracket(pref, c.refYear)
	return ok && year >= lo && year <= hi
}

func audienceMatches(pref, value string) bool {
	group := canonicalAudience(pref)
	for _, a := range audiences(value) {
		if a == group {
			return true
		}
	}
	return false
}
