package aggregate

import (
	"maps"
	"slices"

	"pixnox/internal/core"
)

const (
	// DefaultTopCategories is how many categories the dashboard highlights.
	DefaultTopCategories = 5
	// DefaultRecentLimit is how many records the dashboard lists.
	DefaultRecentLimit = 10
)

// Dashboard is the overview of the period containing Today.
type Dashboard struct {
	Period        Period          `json:"period"`
	Today         core.Date       `json:"today"`
	Current       Window          `json:"current"`
	Previous      Window          `json:"previous"`
	Summary       Summary         `json:"summary"`
	PreviousTotal core.Money      `json:"previousTotal"`
	Change        Change          `json:"change"`
	Categories    []CategoryTotal `json:"categories"`
	TopCategories []CategoryTotal `json:"topCategories"`
	Trend         []Bucket        `json:"trend"`
	Recent        []core.Expense  `json:"recent"`
}

// Report is the time series and category comparison view.
type Report struct {
	Period           Period           `json:"period"`
	Today            core.Date        `json:"today"`
	Current          Window           `json:"current"`
	Previous         Window           `json:"previous"`
	Series           []Bucket         `json:"series"`
	ActiveCategories []core.Category  `json:"activeCategories"`
	Comparison       []CategoryChange `json:"comparison"`
}

// DashboardOptions tunes list lengths. Zero values mean the defaults.
type DashboardOptions struct {
	TopCategories int
	RecentLimit   int
}

// BuildDashboard computes the dashboard over an expense snapshot.
func BuildDashboard(expenses []core.Expense, p Period, today core.Date) (Dashboard, error) {
	return BuildDashboardWith(expenses, p, today, DashboardOptions{})
}

func BuildDashboardWith(expenses []core.Expense, p Period, today core.Date, opts DashboardOptions) (Dashboard, error) {
	if opts.TopCategories <= 0 {
		opts.TopCategories = DefaultTopCategories
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	cur, prev, err := Resolve(p, today)
	if err != nil {
		return Dashboard{}, err
	}
	trend, err := TrendSeries(expenses, p, today)
	if err != nil {
		return Dashboard{}, err
	}

	inCurrent := Filter(expenses, cur)
	summary := Summarize(inCurrent, cur)
	prevSummary := Summarize(Filter(expenses, prev), prev)
	breakdown := Breakdown(inCurrent)

	recent := slices.Clone(inCurrent)
	core.SortNewestFirst(recent)
	if len(recent) > opts.RecentLimit {
		recent = recent[:opts.RecentLimit]
	}

	return Dashboard{
		Period:        p,
		Today:         today,
		Current:       cur,
		Previous:      prev,
		Summary:       summary,
		PreviousTotal: prevSummary.Total,
		Change:        Compare(summary.Total, prevSummary.Total),
		Categories:    nonNil(breakdown),
		TopCategories: nonNil(TopCategories(breakdown, opts.TopCategories)),
		Trend:         trend,
		Recent:        nonNil(recent),
	}, nil
}

// BuildReport computes the report view over an expense snapshot.
func BuildReport(expenses []core.Expense, p Period, today core.Date) (Report, error) {
	cur, prev, err := Resolve(p, today)
	if err != nil {
		return Report{}, err
	}
	series, err := ReportSeries(expenses, p, today)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Period:           p,
		Today:            today,
		Current:          cur,
		Previous:         prev,
		Series:           series,
		ActiveCategories: nonNil(ActiveCategories(expenses)),
		Comparison:       CompareCategories(Filter(expenses, cur), Filter(expenses, prev)),
	}, nil
}

// Clone returns a copy that shares no slices or maps with d.
func (d Dashboard) Clone() Dashboard {
	d.Categories = slices.Clone(d.Categories)
	d.TopCategories = slices.Clone(d.TopCategories)
	d.Trend = cloneBuckets(d.Trend)
	d.Recent = slices.Clone(d.Recent)
	return d
}

// Clone returns a copy that shares no slices or maps with r.
func (r Report) Clone() Report {
	r.Series = cloneBuckets(r.Series)
	r.ActiveCategories = slices.Clone(r.ActiveCategories)
	r.Comparison = slices.Clone(r.Comparison)
	return r
}

func cloneBuckets(b []Bucket) []Bucket {
	out := slices.Clone(b)
	for i := range out {
		out[i].ByCategory = maps.Clone(out[i].ByCategory)
	}
	return out
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
