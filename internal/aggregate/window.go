package aggregate

import (
	"time"

	"pixnox/internal/core"
)

// Window is the half-open date range [Start, End).
type Window struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d core.Date) bool {
	return !d.Before(w.Start) && d.Before(w.End)
}

// Days is the number of calendar days covered.
func (w Window) Days() int {
	return w.Start.DaysUntil(w.End)
}

// Last is the final day inside the window.
func (w Window) Last() core.Date {
	return w.End.AddDays(-1)
}

// Resolve returns the window of period containing today and the
// calendar-aligned window immediately before it.
func Resolve(p Period, today core.Date) (current, previous Window, err error) {
	s, err := strategyFor(p)
	if err != nil {
		return Window{}, Window{}, err
	}
	start := s.start(today)
	current = Window{Start: start, End: s.shift(start, 1)}
	previous = Window{Start: s.shift(start, -1), End: start}
	return current, previous, nil
}

// Today returns the calendar date of now in loc. A nil loc means UTC.
func Today(now time.Time, loc *time.Location) core.Date {
	if loc == nil {
		loc = time.UTC
	}
	return core.DateOf(now.In(loc))
}

// Filter keeps the records dated inside w, preserving their order.
func Filter(expenses []core.Expense, w Window) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if w.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}
