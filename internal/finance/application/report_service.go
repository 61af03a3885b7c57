package application

import (
	"sort"
	"time"

	"github.com/expensio/expensio/internal/finance/domain"
)

const topExpensesLimit = 10

type ReportSummary struct {
	Total       float64                `json:"total"`
	ByCategory  []domain.CategoryTotal `json:"by_category"`
	Trend       []domain.TrendPoint    `json:"trend"`
	TopExpenses []domain.Transaction   `json:"top_expenses"`
	Granularity domain.Granularity     `json:"granularity"`
}

// BuildReportSummary derives every report view from one fetched transaction
// list; it holds no state between calls.
func BuildReportSummary(transactions []domain.Transaction, startDate, endDate time.Time) ReportSummary {
	granularity := chooseGranularity(startDate, endDate)
	return ReportSummary{
		Total:       Total(transactions),
		ByCategory:  CategoryBreakdown(transactions),
		Trend:       TrendSeries(transactions, startDate, endDate),
		TopExpenses: TopExpenses(transactions, topExpensesLimit),
		Granularity: granularity,
	}
}

// CategoryBreakdown groups transactions by category and sums amounts,
// sorted by sum descending. Categories with no transactions are absent.
func CategoryBreakdown(transactions []domain.Transaction) []domain.CategoryTotal {
	sums := make(map[domain.Category]float64)
	for _, transaction := range transactions {
		sums[transaction.Category] += transaction.Amount
	}

	breakdown := make([]domain.CategoryTotal, 0, len(sums))
	for category, total := range sums {
		breakdown = append(breakdown, domain.CategoryTotal{Category: category, Total: total})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// TrendSeries buckets the window with a granularity chosen from its length:
// daily for up to a month, weekly for up to three months, monthly beyond.
// Each transaction is counted in the bucket whose half-open interval
// [start, start+granularity) contains its date. Empty buckets report 0 so
// the axis has no gaps.
func TrendSeries(transactions []domain.Transaction, startDate, endDate time.Time) []domain.TrendPoint {
	start, end := NormalizeDayRange(startDate, endDate)
	granularity := chooseGranularity(startDate, endDate)

	var points []domain.TrendPoint
	for bucketStart := start; !bucketStart.After(end); bucketStart = nextBucket(bucketStart, granularity) {
		bucketEnd := nextBucket(bucketStart, granularity)

		var total float64
		for _, transaction := range transactions {
			if !transaction.Date.Before(bucketStart) && transaction.Date.Before(bucketEnd) {
				total += transaction.Amount
			}
		}
		points = append(points, domain.TrendPoint{
			Label: bucketLabel(bucketStart, granularity),
			Start: bucketStart,
			Total: total,
		})
	}
	return points
}

// TopExpenses returns up to n transactions ranked by amount descending.
// The sort is stable so ties keep their original order.
func TopExpenses(transactions []domain.Transaction, n int) []domain.Transaction {
	ranked := make([]domain.Transaction, len(transactions))
	copy(ranked, transactions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount > ranked[j].Amount
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Total sums amounts over the full list; 0 for an empty list.
func Total(transactions []domain.Transaction) float64 {
	var total float64
	for _, transaction := range transactions {
		total += transaction.Amount
	}
	return total
}

func chooseGranularity(startDate, endDate time.Time) domain.Granularity {
	switch {
	case !endDate.After(startDate.AddDate(0, 1, 0)):
		return domain.GranularityDaily
	case !endDate.After(startDate.AddDate(0, 3, 0)):
		return domain.GranularityWeekly
	default:
		return domain.GranularityMonthly
	}
}

func nextBucket(bucketStart time.Time, granularity domain.Granularity) time.Time {
	switch granularity {
	case domain.GranularityDaily:
		return bucketStart.AddDate(0, 0, 1)
	case domain.GranularityWeekly:
		return bucketStart.AddDate(0, 0, 7)
	default:
		return bucketStart.AddDate(0, 1, 0)
	}
}

func bucketLabel(bucketStart time.Time, granularity domain.Granularity) string {
	switch granularity {
	case domain.GranularityDaily:
		return bucketStart.Format("2006-01-02")
	case domain.GranularityWeekly:
		return "Week of " + bucketStart.Format("2006-01-02")
	default:
		return bucketStart.Format("Jan 2006")
	}
}
