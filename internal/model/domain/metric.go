package domain

import "time"

// Family names a persisted metric series.
type Family string

const (
	FamilyPrecision   Family = "precision"
	FamilyRecall      Family = "recall"
	FamilyF1          Family = "f1_score"
	FamilyAccuracy    Family = "accuracy"
	FamilySpecificity Family = "specificity"
	FamilyFNR         Family = "fnr"
	FamilyFPR         Family = "fpr"
)

var families = map[string]Family{
	"precision":   FamilyPrecision,
	"recall":      FamilyRecall,
	"f1":          FamilyF1,
	"f1_score":    FamilyF1,
	"accuracy":    FamilyAccuracy,
	"specificity": FamilySpecificity,
	"fnr":         FamilyFNR,
	"fpr":         FamilyFPR,
}

func ParseFamily(s string) (Family, error) {
	if f, ok := families[s]; ok {
		return f, nil
	}
	return "", NewError(ModuleEvaluation, CodeUnknownFamily, "unknown metric family "+s, nil)
}

// Rate holds the three representations of one metric value. Fixed and
// Percentage are always derived from Exact.
type Rate struct {
	Exact      float64 `json:"exact"`
	Fixed      float64 `json:"fixed"`
	Percentage float64 `json:"percentage"`
}

// Confusion is the classifier evaluation of one user against the platform.
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TN int `json:"tn"`

	PlatformTotal    int `json:"platform_total"`
	PlatformRelevant int `json:"platform_relevant"`
	UserTotal        int `json:"user_total"`
	UserRelevant     int `json:"user_relevant"`
}

func (c Confusion) PlatformIrrelevant() int { return c.PlatformTotal - c.PlatformRelevant }
func (c Confusion) UserIrrelevant() int     { return c.UserTotal - c.UserRelevant }

// WriteOutcome reports what a conditional metric write did.
type WriteOutcome struct {
	Written bool   `json:"written"`
	Message string `json:"message"`
}

// Persistence is attached to computed results. Verified is false when the
// store could not be reached and the value was not confirmed written.
type Persistence struct {
	Written  bool   `json:"written"`
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

type MetricResult struct {
	UserID      int64       `json:"user_id"`
	Family      Family      `json:"family"`
	Rate        Rate        `json:"rate"`
	Counts      Confusion   `json:"counts"`
	Persistence Persistence `json:"persistence"`
}

// MetricPoint is one stored metric value as read back for aggregation.
type MetricPoint struct {
	Family Family
	Exact  float64
	Date   time.Time
}

// AnalysisPoint is the precision captured by one stored analysis.
type AnalysisPoint struct {
	Precision float64
	Date      time.Time
}

// Analysis is the audit record of one generation event.
type Analysis struct {
	UserID        int64         `json:"user_id"`
	RelevantCount int           `json:"relevant_count"`
	TotalCount    int           `json:"total_count"`
	Precision     Rate          `json:"precision"`
	Relevant      []ItemVerdict `json:"relevant_recommendations"`
	Date          time.Time     `json:"date"`
}
