package prosperity

import (
	"math"
	"strconv"
	"strings"

	"mindreel/relevance/internal/model/domain"
)

// parseNumber reads values such as "8.5", "74" or "1,234". ok is false for
// "N/A", empty or otherwise non-numeric text.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseBoxOffice reads "$292,587,330".
func parseBoxOffice(s string) (float64, bool) {
	return parseNumber(strings.TrimPrefix(strings.TrimSpace(s), "$"))
}

// parsePercent reads "87%" as 0.87.
func parsePercent(s string) (float64, bool) {
	v, ok := parseNumber(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if !ok {
		return 0, false
	}
	return v / 100, true
}

func boxOfficeNormalization(total, highest float64) float64 {
	if highest <= 0 {
		return 0
	}
	return total / highest
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type entity struct {
	key  string
	name string
}

// entities lists who or what a recommendation row counts towards. People
// columns are comma-separated; blanks and "N/A" are skipped and a name
// repeated within one row counts once.
func entities(kind domain.EntityKind, src domain.ProsperitySource) []entity {
	var column string
	switch kind {
	case domain.EntityMovie:
		if src.ID == "" {
			return nil
		}
		name := src.Title
		if name == "" {
			name = src.ID
		}
		return []entity{{key: src.ID, name: name}}
	case domain.EntityDirector:
		column = src.Director
	case domain.EntityActor:
		column = src.Actors
	case domain.EntityWriter:
		column = src.Writer
	}

	var out []entity
	seen := make(map[string]struct{})
	for _, part := range strings.Split(column, ",") {
		name := strings.TrimSpace(writerRole(part))
		if name == "" || strings.EqualFold(name, "N/A") {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, entity{key: name, name: name})
	}
	return out
}

// writerRole drops OMDb credit suffixes: "Jonathan Nolan (screenplay)".
func writerRole(s string) string {
	if i := strings.Index(s, "("); i >= 0 {
		return s[:i]
	}
	return s
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64, ok bool) {
	if !ok {
		return
	}
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
