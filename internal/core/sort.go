package core

import (
	"cmp"
	"slices"
)

// SortNewestFirst orders by date descending, then creation time descending,
// then ID so the order is total.
func SortNewestFirst(es []Expense) {
	slices.SortStableFunc(es, func(a, b Expense) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// SortOldestFirst is the reverse of SortNewestFirst.
func SortOldestFirst(es []Expense) {
	slices.SortStableFunc(es, func(a, b Expense) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
