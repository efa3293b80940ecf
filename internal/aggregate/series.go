package aggregate

import (
	"pixnox/internal/core"
)

// Bucket is one point of a time series.
type Bucket struct {
	Label string `json:"label"`
	Window
	Total      core.Money                   `json:"total"`
	ByCategory map[core.Category]core.Money `json:"byCategory,omitempty"`
}

// TrendSeries builds the dashboard trend: 7 or 30 daily buckets ending
// today, or 12 monthly buckets for a year.
func TrendSeries(expenses []core.Expense, p Period, today core.Date) ([]Bucket, error) {
	s, err := strategyFor(p)
	if err != nil {
		return nil, err
	}
	buckets := s.trend(today)
	fill(buckets, expenses, false)
	return buckets, nil
}

// ReportSeries builds the report time series with per-category totals:
// 8 ISO weeks, 6 months or 12 months ending with the current unit.
func ReportSeries(expenses []core.Expense, p Period, today core.Date) ([]Bucket, error) {
	s, err := strategyFor(p)
	if err != nil {
		return nil, err
	}
	buckets := s.report(today)
	fill(buckets, expenses, true)
	return buckets, nil
}

// fill adds every expense to the bucket whose window contains it. Buckets
// are chronological and disjoint, so a binary search finds the slot.
func fill(buckets []Bucket, expenses []core.Expense, byCategory bool) {
	if byCategory {
		for i := range buckets {
			buckets[i].ByCategory = make(map[core.Category]core.Money)
		}
	}
	for _, e := range expenses {
		i := locate(buckets, e.Date)
		if i < 0 {
			continue
		}
		b := &buckets[i]
		b.Total = b.Total.Add(e.Amount)
		if byCategory {
			b.ByCategory[e.Category] = b.ByCategory[e.Category].Add(e.Amount)
		}
	}
}

func locate(buckets []Bucket, d core.Date) int {
	lo, hi := 0, len(buckets)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case d.Before(buckets[mid].Start):
			hi = mid
		case !d.Before(buckets[mid].End):
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}
