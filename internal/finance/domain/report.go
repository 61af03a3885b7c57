package domain

import "time"

// Report types are derived on every request from the transaction set in a
// date window. None of them are persisted.

type CategoryTotal struct {
	Category Category `json:"category"`
	Total    float64  `json:"total"`
}

type TrendPoint struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Total float64   `json:"total"`
}

// Granularity of a trend series bucket, chosen from the window length.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)
