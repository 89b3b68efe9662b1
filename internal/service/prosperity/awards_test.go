package prosperity

import (
	"testing"

	"mindreel/relevance/internal/model/domain"
)

func TestLexicalParser(t *testing.T) {
	tests := []struct {
		text string
		want domain.Awards
	}{
		{"Won 2 Oscars. 164 wins & 164 nominations total", domain.Awards{Wins: 164, Nominations: 164, OscarWins: 2}},
		{"Nominated for 3 Oscars. 10 wins & 30 nominations total", domain.Awards{Wins: 10, Nominations: 30, OscarNominations: 3}},
		{"Won 1 Oscar. Another 5 wins & 7 nominations.", domain.Awards{Wins: 5, Nominations: 7, OscarWins: 1}},
		{"Won 1 Primetime Emmy.", domain.Awards{Wins: 1}},
		{"Nominated for 2 Golden Globes.", domain.Awards{Nominations: 2}},
		{"1 win & 2 nominations", domain.Awards{Wins: 1, Nominations: 2}},
		{"3 nominations", domain.Awards{Nominations: 3}},
		{"N/A", domain.Awards{}},
		{"", domain.Awards{}},
		{"critically acclaimed", domain.Awards{}},
	}
	for _, tt := range tests {
		if got := (LexicalParser{}).Parse(tt.text); got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}
