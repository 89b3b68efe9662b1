package evaluation

import (
	"math"
	"strconv"

	"mindreel/relevance/internal/model/domain"
)

// canonical rounds v to 16 decimal places, the precision stored as the exact value.
func canonical(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 16, 64), 64)
	if err != nil {
		return 0
	}
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NewRate derives all three representations from one value.
func NewRate(v float64) domain.Rate {
	exact := canonical(clamp01(v))
	return domain.Rate{
		Exact:      exact,
		Fixed:      round2(exact),
		Percentage: round2(exact * 100),
	}
}

func ratio(num, den int) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Confuse derives the confusion matrix from the two population counts.
// Negative cells, possible only when the user set is not a subset of the
// platform set, are clamped to zero.
func Confuse(platformTotal, platformRelevant, userTotal, userRelevant int) domain.Confusion {
	tp := userRelevant
	fp := userTotal - userRelevant
	fn := platformRelevant - userRelevant
	tn := (platformTotal - userTotal) - fn
	return domain.Confusion{
		TP:               max(tp, 0),
		FP:               max(fp, 0),
		FN:               max(fn, 0),
		TN:               max(tn, 0),
		PlatformTotal:    platformTotal,
		PlatformRelevant: platformRelevant,
		UserTotal:        userTotal,
		UserRelevant:     userRelevant,
	}
}

// Precision is TP over everything the user was given.
func Precision(c domain.Confusion) domain.Rate {
	return NewRate(ratio(c.TP, c.TP+c.FP))
}

// Recall is TP over everything relevant on the platform.
func Recall(c domain.Confusion) domain.Rate {
	return NewRate(ratio(c.TP, c.PlatformRelevant))
}

func Accuracy(c domain.Confusion) domain.Rate {
	return NewRate(ratio(c.TP+c.TN, c.PlatformTotal))
}

func Specificity(c domain.Confusion) domain.Rate {
	return NewRate(ratio(c.TN, c.PlatformIrrelevant()))
}

func FNR(c domain.Confusion) domain.Rate {
	return NewRate(ratio(c.FN, c.PlatformRelevant))
}

func FPR(c domain.Confusion) domain.Rate {
	return NewRate(ratio(c.FP, c.PlatformIrrelevant()))
}

// F1 is the harmonic mean of precision and recall, 0 when both are 0.
func F1(precision, recall float64) domain.Rate {
	if precision+recall == 0 {
		return NewRate(0)
	}
	return NewRate(2 * precision * recall / (precision + recall))
}

// Evaluate computes the given family from the confusion matrix.
func Evaluate(family domain.Family, c domain.Confusion) (domain.Rate, error) {
	switch family {
	case domain.FamilyPrecision:
		return Precision(c), nil
	case domain.FamilyRecall:
		return Recall(c), nil
	case domain.FamilyF1:
		return F1(Precision(c).Exact, Recall(c).Exact), nil
	case domain.FamilyAccuracy:
		return Accuracy(c), nil
	case domain.FamilySpecificity:
		return Specificity(c), nil
	case domain.FamilyFNR:
		return FNR(c), nil
	case domain.FamilyFPR:
		return FPR(c), nil
	}
	return domain.Rate{}, domain.NewError(domain.ModuleEvaluation, domain.CodeUnknownFamily,
		"unknown metric family "+string(family), nil)
}
