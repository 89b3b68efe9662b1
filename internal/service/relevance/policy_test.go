package relevance

import (
	"testing"

	"mindreel/relevance/internal/model/domain"
)

func TestThresholdPolicy(t *testing.T) {
	p := ThresholdPolicy{Min: 4}
	if p.Relevant(3, domain.CriteriaScores{}) {
		t.Error("Relevant(3) = true, want false")
	}
	if !p.Relevant(4, domain.CriteriaScores{}) {
		t.Error("Relevant(4) = false, want true")
	}
}

func TestExprPolicy(t *testing.T) {
	p, err := NewExprPolicy("score >= 2 && criteria.genres >= 1", ThresholdPolicy{Min: 4})
	if err != nil {
		t.Fatalf("NewExprPolicy() error = %v", err)
	}
	tests := []struct {
		name     string
		criteria domain.CriteriaScores
		want     bool
	}{
		{"genre and type", domain.CriteriaScores{Genres: 1, Type: 1}, true},
		{"no genre", domain.CriteriaScores{Type: 1, Mood: 1, TargetGroup: 1}, false},
		{"genre only", domain.CriteriaScores{Genres: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Relevant(tt.criteria.Sum(), tt.criteria); got != tt.want {
				t.Errorf("Relevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExprPolicyUsesMax(t *testing.T) {
	p, err := NewExprPolicy("score * 2 > max", ThresholdPolicy{})
	if err != nil {
		t.Fatalf("NewExprPolicy() error = %v", err)
	}
	if p.Relevant(3, domain.CriteriaScores{Genres: 2, Type: 1}) {
		t.Error("3 of 7 should not be a majority")
	}
	if !p.Relevant(4, domain.CriteriaScores{Genres: 2, Type: 1, Mood: 1}) {
		t.Error("4 of 7 should be a majority")
	}
}

func TestNewExprPolicyErrors(t *testing.T) {
	for _, expr := range []string{"score >=", "score + 1", "unknown_var > 1"} {
		if _, err := NewExprPolicy(expr, ThresholdPolicy{Min: 4}); err == nil {
			t.Errorf("NewExprPolicy(%q) error = nil, want error", expr)
		}
	}
}

func TestPolicyFrom(t *testing.T) {
	p, err := PolicyFrom(5, "")
	if err != nil {
		t.Fatal(err)
	}
	if tp, ok := p.(ThresholdPolicy); !ok || tp.Min != 5 {
		t.Errorf("PolicyFrom(5, \"\") = %#v, want ThresholdPolicy{5}", p)
	}
	p, err = PolicyFrom(5, "score >= 1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*ExprPolicy); !ok {
		t.Errorf("PolicyFrom with expr = %T, want *ExprPolicy", p)
	}
}
