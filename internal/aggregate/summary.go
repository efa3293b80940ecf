package aggregate

import (
	"cmp"
	"math"
	"slices"

	"pixnox/internal/core"
)

// Summary holds the headline figures for one window.
type Summary struct {
	Total        core.Money `json:"total"`
	Count        int        `json:"count"`
	Average      core.Money `json:"average"`
	DailyAverage core.Money `json:"dailyAverage"`
}

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	Category   core.Category `json:"category"`
	Label      string        `json:"label"`
	Color      string        `json:"color"`
	Amount     core.Money    `json:"amount"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
}

// Summarize totals subset, which is expected to be already filtered to w.
// Averages are zero for an empty subset or an empty window.
func Summarize(subset []core.Expense, w Window) Summary {
	var s Summary
	for _, e := range subset {
		s.Total = s.Total.Add(e.Amount)
	}
	s.Count = len(subset)
	s.Average = s.Total.DivRound(int64(s.Count))
	s.DailyAverage = s.Total.DivRound(int64(w.Days()))
	return s
}

// Breakdown groups subset by category, largest amount first. Unknown
// categories keep their literal key.
func Breakdown(subset []core.Expense) []CategoryTotal {
	var total core.Money
	idx := make(map[core.Category]int)
	var out []CategoryTotal
	for _, e := range subset {
		total = total.Add(e.Amount)
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, CategoryTotal{
				Category: e.Category,
				Label:    e.Category.Label(),
				Color:    e.Category.Color(),
			})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
		out[i].Count++
	}
	for i := range out {
		out[i].Percentage = percentOf(out[i].Amount, total)
	}
	sortByAmount(out, func(c CategoryTotal) (core.Money, core.Category) { return c.Amount, c.Category })
	return out
}

// TopCategories returns at most n leading rows of a breakdown.
func TopCategories(b []CategoryTotal, n int) []CategoryTotal {
	if n < 0 {
		n = 0
	}
	if len(b) > n {
		b = b[:n]
	}
	return slices.Clone(b)
}

// ActiveCategories lists every category present in expenses, ordered by
// key, for stacked series display.
func ActiveCategories(expenses []core.Expense) []core.Category {
	seen := make(map[core.Category]struct{})
	var out []core.Category
	for _, e := range expenses {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	slices.Sort(out)
	return out
}

func percentOf(part, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	return round1(100 * float64(part.Cents) / float64(total.Cents))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// sortByAmount orders rows by amount descending, ties by category key.
func sortByAmount[T any](rows []T, key func(T) (core.Money, core.Category)) {
	slices.SortStableFunc(rows, func(a, b T) int {
		am, ac := key(a)
		bm, bc := key(b)
		if c := cmp.Compare(bm.Cents, am.Cents); c != 0 {
			return c
		}
		return cmp.Compare(ac, bc)
	})
}
