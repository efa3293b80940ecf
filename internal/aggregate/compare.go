package aggregate

import (
	"pixnox/internal/core"
)

// Direction tells which way a value moved between two windows.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Change compares a current amount against the previous window's.
type Change struct {
	Current   core.Money `json:"current"`
	Previous  core.Money `json:"previous"`
	Percent   float64    `json:"percent"`
	Direction Direction  `json:"direction"`
}

// CategoryChange is a per-category Change for the comparison table.
type CategoryChange struct {
	Category core.Category `json:"category"`
	Label    string        `json:"label"`
	Color    string        `json:"color"`
	Change
}

// Compare returns the percent change rounded to one decimal. A zero
// previous amount yields 100 when current is positive and 0 otherwise.
// Direction follows the amounts, so a change too small to show in Percent
// is still up or down.
func Compare(current, previous core.Money) Change {
	c := Change{Current: current, Previous: previous}
	switch {
	case previous.Cents > 0:
		c.Percent = round1(100 * float64(current.Cents-previous.Cents) / float64(previous.Cents))
		if c.Percent == 0 {
			c.Percent = 0 // no -0 in JSON
		}
	case current.Cents > 0:
		c.Percent = 100
	}
	switch {
	case current.Cents > previous.Cents:
		c.Direction = DirectionUp
	case current.Cents < previous.Cents:
		c.Direction = DirectionDown
	default:
		c.Direction = DirectionFlat
	}
	return c
}

// CompareCategories compares per-category totals over the union of
// categories seen in either window, largest current amount first.
func CompareCategories(current, previous []core.Expense) []CategoryChange {
	cur := sumByCategory(current)
	prev := sumByCategory(previous)

	out := make([]CategoryChange, 0, len(cur)+len(prev))
	add := func(c core.Category) {
		out = append(out, CategoryChange{
			Category: c,
			Label:    c.Label(),
			Color:    c.Color(),
			Change:   Compare(cur[c], prev[c]),
		})
	}
	for c := range cur {
		add(c)
	}
	for c := range prev {
		if _, ok := cur[c]; !ok {
			add(c)
		}
	}
	sortByAmount(out, func(c CategoryChange) (core.Money, core.Category) { return c.Current, c.Category })
	return out
}

func sumByCategory(expenses []core.Expense) map[core.Category]core.Money {
	m := make(map[core.Category]core.Money)
	for _, e := range expenses {
		m[e.Category] = m[e.Category].Add(e.Amount)
	}
	return m
}
