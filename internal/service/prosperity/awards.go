package prosperity

import (
	"regexp"
	"strconv"
	"strings"

	"mindreel/relevance/internal/model/domain"
)

// AwardsParser extracts award counts from free text such as
// "Won 2 Oscars. 164 wins & 164 nominations total". Text it does not
// understand yields zero counts.
type AwardsParser interface {
	Parse(text string) domain.Awards
}

var (
	winsRe        = regexp.MustCompile(`(?i)(\d+)\s+wins?\b`)
	nominationsRe = regexp.MustCompile(`(?i)(\d+)\s+nominations?\b`)
	wonRe         = regexp.MustCompile(`(?i)\bwon\s+(\d+)\s+([a-z]+)`)
	nominatedRe   = regexp.MustCompile(`(?i)\bnominated\s+for\s+(\d+)\s+([a-z]+)`)
)

// LexicalParser understands the OMDb awards sentence.
type LexicalParser struct{}

func (LexicalParser) Parse(text string) domain.Awards {
	var a domain.Awards
	if text == "" || strings.EqualFold(text, "N/A") {
		return a
	}

	a.Wins = firstInt(winsRe, text)
	a.Nominations = firstInt(nominationsRe, text)

	won, wonOscar := headline(wonRe, text)
	nominated, nominatedOscar := headline(nominatedRe, text)
	if wonOscar {
		a.OscarWins = won
	}
	if nominatedOscar {
		a.OscarNominations = nominated
	}
	// "Won 1 Primetime Emmy." carries no totals sentence.
	if a.Wins == 0 {
		a.Wins = won
	}
	if a.Nominations == 0 {
		a.Nominations = nominated
	}
	return a
}

func firstInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// headline reads "Won N <award>" or "Nominated for N <award>" and reports
// whether the award is an Oscar.
func headline(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, strings.HasPrefix(strings.ToLower(m[2]), "oscar")
}
