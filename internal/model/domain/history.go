package domain

import "time"

// HistoryPoint holds the running averages up to and including Date.
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Label string    `json:"record_date"`

	AvgPrecision          float64 `json:"average_precision"`
	AvgRecall             float64 `json:"average_recall"`
	AvgF1                 float64 `json:"average_f1_score"`
	AvgPrecisionLastRound float64 `json:"average_precision_last_round"`

	AvgPrecisionPercentage          float64 `json:"average_precision_percentage"`
	AvgRecallPercentage             float64 `json:"average_recall_percentage"`
	AvgF1Percentage                 float64 `json:"average_f1_score_percentage"`
	AvgPrecisionLastRoundPercentage float64 `json:"average_precision_last_round_percentage"`
}

// Averages are overall means across every stored record in scope.
type Averages struct {
	Precision          Rate `json:"precision"`
	Recall             Rate `json:"recall"`
	F1                 Rate `json:"f1_score"`
	PrecisionLastRound Rate `json:"precision_last_round"`
}
