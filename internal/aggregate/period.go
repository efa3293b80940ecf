// Package aggregate computes the dashboard and report views over an
// in-memory snapshot of expense records.
//
// This file implements the Strategy Pattern for calendar periods. Each
// period (week, month, year) has its own strategy that knows where a period
// starts, how to step between periods and how the trend and report series
// are laid out.
package aggregate

import (
	"errors"
	"fmt"
	"strings"

	"pixnox/internal/core"
)

// Period is the calendar unit a view is computed over.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"

	// DefaultPeriod is used when a request does not name one.
	DefaultPeriod = PeriodMonth
)

var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod accepts week, month or year case-insensitively. The empty
// string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	p := Period(s)
	if _, ok := periodStrategies[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	return p, nil
}

func (p Period) String() string { return string(p) }

// periodStrategy is the per-period calendar logic.
type periodStrategy interface {
	// start returns the first day of the unit containing d.
	start(d core.Date) core.Date
	// shift moves a unit start by n units (n may be negative).
	shift(d core.Date, n int) core.Date
	// trend lays out the dashboard trend buckets ending at today.
	trend(today core.Date) []Bucket
	// report lays out the report time series ending at the unit of today.
	report(today core.Date) []Bucket
}

// weekStrategy uses ISO weeks starting on Monday.
type weekStrategy struct{}

func (weekStrategy) start(d core.Date) core.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

func (weekStrategy) shift(d core.Date, n int) core.Date { return d.AddDays(7 * n) }

func (weekStrategy) trend(today core.Date) []Bucket { return dailyBuckets(today, 7) }

func (s weekStrategy) report(today core.Date) []Bucket {
	return unitBuckets(s, today, 8, "Jan 2")
}

type monthStrategy struct{}

func (monthStrategy) start(d core.Date) core.Date { return core.NewDate(d.Year(), d.Month(), 1) }

func (monthStrategy) shift(d core.Date, n int) core.Date { return d.AddMonths(n) }

func (monthStrategy) trend(today core.Date) []Bucket { return dailyBuckets(today, 30) }

func (s monthStrategy) report(today core.Date) []Bucket {
	return unitBuckets(s, today, 6, "Jan 2006")
}

type yearStrategy struct{}

func (yearStrategy) start(d core.Date) core.Date { return core.NewDate(d.Year(), 1, 1) }

func (yearStrategy) shift(d core.Date, n int) core.Date { return d.AddYears(n) }

// trend covers the current month and the eleven before it, the current
// month cut off after today.
func (yearStrategy) trend(today core.Date) []Bucket {
	buckets := unitBuckets(monthStrategy{}, today, 12, "Jan")
	last := &buckets[len(buckets)-1]
	if tomorrow := today.AddDays(1); tomorrow.Before(last.End) {
		last.End = tomorrow
	}
	return buckets
}

func (yearStrategy) report(today core.Date) []Bucket {
	return unitBuckets(monthStrategy{}, today, 12, "Jan 06")
}

var periodStrategies = map[Period]periodStrategy{
	PeriodWeek:  weekStrategy{},
	PeriodMonth: monthStrategy{},
	PeriodYear:  yearStrategy{},
}

func strategyFor(p Period) (periodStrategy, error) {
	s, ok := periodStrategies[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPeriod, p)
	}
	return s, nil
}

// dailyBuckets returns n one-day buckets ending with today.
func dailyBuckets(today core.Date, n int) []Bucket {
	out := make([]Bucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		d := today.AddDays(-i)
		out = append(out, Bucket{
			Label:  d.Format("Jan 2"),
			Window: Window{Start: d, End: d.AddDays(1)},
		})
	}
	return out
}

// unitBuckets returns n whole units of s ending with the unit containing today.
func unitBuckets(s periodStrategy, today core.Date, n int, layout string) []Bucket {
	cur := s.start(today)
	out := make([]Bucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := s.shift(cur, -i)
		out = append(out, Bucket{
			Label:  start.Format(layout),
			Window: Window{Start: start, End: s.shift(start, 1)},
		})
	}
	return out
}
