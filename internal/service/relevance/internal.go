package relevance

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"mindreel/relevance/internal/model/domain"
)

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// splitList splits "Drama, Thriller" style values and normalizes each part.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var wildcards = map[string]struct{}{
	"any":               {},
	"all":               {},
	"no preference":     {},
	"doesn't matter":    {},
	"без значение":      {},
	"няма значение":     {},
	"всички":            {},
	"без предпочитание": {},
}

func isWildcard(s string) bool {
	_, ok := wildcards[s]
	return ok
}

var genreAliases = map[string]string{
	"science fiction": "sci-fi",
	"scifi":           "sci-fi",
	"romantic":        "romance",
	"musical":         "music",
	"sports":          "sport",
	"animated":        "animation",
	"biopic":          "biography",
}

func canonicalGenre(g string) string {
	if a, ok := genreAliases[g]; ok {
		return a
	}
	return g
}

func canonicalType(s string) string {
	switch s {
	case "movie", "movies", "film", "films", "филм", "филми":
		return "movie"
	case "series", "tv series", "tv show", "show", "episode", "сериал", "сериали":
		return "series"
	}
	return s
}

var moodAliases = map[string]string{
	"щастлив":      "happy",
	"весел":        "happy",
	"cheerful":     "happy",
	"тъжен":        "sad",
	"melancholic":  "sad",
	"спокоен":      "calm",
	"relaxed":      "calm",
	"отпуснат":     "calm",
	"развълнуван":  "excited",
	"енергичен":    "excited",
	"energetic":    "excited",
	"романтичен":   "romantic",
	"напрегнат":    "tense",
	"уплашен":      "tense",
	"scared":       "tense",
	"замислен":     "thoughtful",
	"reflective":   "thoughtful",
	"любопитен":    "curious",
	"носталгичен":  "nostalgic",
	"приключенски": "adventurous",
	"adventure":    "adventurous",
}

func canonicalMood(m string) string {
	if a, ok := moodAliases[m]; ok {
		return a
	}
	return m
}

// genreMoods is used when an item carries no explicit mood target.
var genreMoods = map[string][]string{
	"comedy":      {"happy"},
	"animation":   {"happy", "calm"},
	"family":      {"happy", "calm"},
	"romance":     {"romantic", "calm"},
	"drama":       {"sad", "thoughtful", "calm"},
	"action":      {"excited", "adventurous"},
	"adventure":   {"adventurous", "excited"},
	"thriller":    {"tense", "excited"},
	"horror":      {"tense"},
	"mystery":     {"tense", "curious", "thoughtful"},
	"crime":       {"tense", "thoughtful"},
	"sci-fi":      {"curious", "adventurous"},
	"fantasy":     {"adventurous", "curious"},
	"documentary": {"curious", "thoughtful"},
	"biography":   {"thoughtful"},
	"history":     {"thoughtful", "nostalgic"},
	"war":         {"sad", "tense"},
	"music":       {"happy", "romantic"},
	"western":     {"nostalgic", "adventurous"},
	"sport":       {"excited"},
}

func itemMoods(it domain.RecommendationItem) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range it.Moods {
		for _, part := range splitList(m) {
			out[canonicalMood(part)] = struct{}{}
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, g := range it.Genres {
		for _, part := range splitList(g) {
			for _, m := range genreMoods[canonicalGenre(part)] {
				out[m] = struct{}{}
			}
		}
	}
	return out
}

var (
	numberRe  = regexp.MustCompile(`\d+`)
	hoursRe   = regexp.MustCompile(`(\d+)\s*(?:h\b|hours?|hrs?|час)`)
	minutesRe = regexp.MustCompile(`(\d+)\s*(?:m\b|min|мин)`)
	yearRe    = regexp.MustCompile(`\d{4}`)
	decadeRe  = regexp.MustCompile(`^(\d{2}|\d{4})\s*(?:s|-те|'s)$`)
	rangeRe   = regexp.MustCompile(`^(\d{4})\s*[-–]\s*(\d{4})$`)
)

// runtimeMinutes parses "148 min", "1h 30min" or a bare number of minutes.
func runtimeMinutes(s string) int {
	h := hoursRe.FindStringSubmatch(s)
	m := minutesRe.FindStringSubmatch(s)
	if h == nil && m == nil {
		n, _ := strconv.Atoi(numberRe.FindString(s))
		return n
	}
	total := 0
	if h != nil {
		n, _ := strconv.Atoi(h[1])
		total += n * 60
	}
	if m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n
	}
	return total
}

// timeBudget converts a time-availability answer into a maximum runtime in minutes.
func timeBudget(pref string) (int, bool) {
	switch pref {
	case "short", "кратко", "малко":
		return 90, true
	case "medium", "средно":
		return 150, true
	case "long", "дълго", "много", "unlimited":
		return math.MaxInt, true
	}
	if strings.Contains(pref, "+") || strings.HasPrefix(pref, "more than") || strings.HasPrefix(pref, "над") {
		return math.MaxInt, true
	}

	nums := numberRe.FindAllString(pref, -1)
	if len(nums) == 0 {
		return 0, false
	}
	n, _ := strconv.Atoi(nums[len(nums)-1])
	switch {
	case minutesRe.MatchString(pref):
		return n, true
	case hoursRe.MatchString(pref), n <= 10:
		return n * 60, true
	default:
		return n, true
	}
}

func firstYear(s string) (int, bool) {
	y := yearRe.FindString(s)
	if y == "" {
		return 0, false
	}
	n, err := strconv.Atoi(y)
	return n, err == nil
}

// ageBracket returns the inclusive release-year range described by pref.
func ageBracket(pref string, refYear int) (int, int, bool) {
	const (
		lowest  = math.MinInt
		highest = math.MaxInt
	)
	switch pref {
	case "new", "newest", "latest", "нови", "най-нови":
		return refYear - 5, highest, true
	case "recent", "modern", "скорошни", "съвременни":
		return refYear - 15, highest, true
	case "old", "older", "classic", "стари", "по-стари", "класически", "класика":
		return lowest, refYear - 16, true
	}

	if m := rangeRe.FindStringSubmatch(pref); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi, true
	}
	if m := decadeRe.FindStringSubmatch(pref); m != nil {
		start, _ := strconv.Atoi(m[1])
		if start < 100 {
			start += 1900
		}
		return start, start + 9, true
	}

	nums := numberRe.FindAllString(pref, -1)
	if len(nums) == 0 {
		return 0, 0, false
	}
	n, _ := strconv.Atoi(nums[0])
	switch {
	case hasAnyPrefix(pref, "before", "преди", "до"):
		return lowest, n - 1, true
	case hasAnyPrefix(pref, "after", "след"):
		return n + 1, highest, true
	case hasAnyPrefix(pref, "since", "from", "от"):
		return n, highest, true
	case hasAnyPrefix(pref, "last", "последните"):
		return refYear - n, highest, true
	case len(nums[0]) == 4:
		return n, n, true
	}
	return 0, 0, false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

var audienceAliases = map[string]string{
	"kids":        "kids",
	"children":    "kids",
	"деца":        "kids",
	"детска":      "kids",
	"family":      "family",
	"семейство":   "family",
	"семейна":     "family",
	"teens":       "teens",
	"teenagers":   "teens",
	"тийнейджъри": "teens",
	"младежи":     "teens",
	"adults":      "adults",
	"adult":       "adults",
	"възрастни":   "adults",
	"пълнолетни":  "adults",
}

func canonicalAudience(s string) string {
	if a, ok := audienceAliases[s]; ok {
		return a
	}
	return s
}

// audiences maps an MPAA or TV parental rating to the groups it suits.
func audiences(rated string) []string {
	switch strings.ToUpper(rated) {
	case "G", "TV-Y", "TV-G":
		return []string{"kids", "family"}
	case "PG", "TV-Y7", "TV-Y7-FV":
		return []string{"kids", "family", "teens"}
	case "PG-13", "TV-PG":
		return []string{"family", "teens", "adults"}
	case "TV-14":
		return []string{"teens", "adults"}
	case "R", "NC-17", "TV-MA", "X":
		return []string{"adults"}
	}
	return nil
}
