package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"pixnox/internal/aggregate"
	"pixnox/internal/core"
)

// Options controls how views are rendered
type Options struct {
	Currency Currency
	Config   *Config
	// Color enables ANSI colours for change directions.
	Color bool
}

func (o Options) label(c core.Category) string {
	return o.Config.Label(c)
}

func (o Options) direction(ch aggregate.Change) string {
	s := o.Currency.Percent(ch.Percent)
	if !o.Color {
		return s
	}
	// More spending is the bad direction
	switch ch.Direction {
	case aggregate.DirectionUp:
		return text.FgRed.Sprint(s)
	case aggregate.DirectionDown:
		return text.FgGreen.Sprint(s)
	default:
		return text.FgHiBlack.Sprint(s)
	}
}

func (o Options) bold(s string) string {
	if !o.Color {
		return s
	}
	return text.Bold.Sprint(s)
}

// windowString renders a half-open window as its inclusive day range.
func windowString(w aggregate.Window) string {
	return fmt.Sprintf("%s to %s", w.Start, w.Last())
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// PrintDashboard renders the dashboard as summary, category and recent tables.
func PrintDashboard(w io.Writer, d aggregate.Dashboard, opts Options) {
	fmt.Fprintf(w, "Dashboard for the %s of %s (%s)\n", d.Period, d.Today, windowString(d.Current))
	fmt.Fprintf(w, "Compared with %s\n\n", windowString(d.Previous))

	summary := newTable(w, "Summary")
	summary.AppendRows([]table.Row{
		{"Total", opts.Currency.Format(d.Summary.Total)},
		{"Expenses", d.Summary.Count},
		{"Average", opts.Currency.Format(d.Summary.Average)},
		{"Daily average", opts.Currency.Format(d.Summary.DailyAverage)},
		{"Previous period", opts.Currency.Format(d.PreviousTotal)},
		{"Change", opts.direction(d.Change)},
	})
	summary.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	summary.Render()
	fmt.Fprintln(w)

	printCategoryTotals(w, "Categories", d.Categories, d.Summary.Total, opts)
	fmt.Fprintln(w)

	if len(d.TopCategories) > 0 {
		top := newTable(w, "Top categories")
		top.AppendHeader(table.Row{"#", "Category", "Amount", "Share"})
		for i, c := range d.TopCategories {
			top.AppendRow(table.Row{i + 1, opts.label(c.Category), opts.Currency.Format(c.Amount), fmt.Sprintf("%.1f%%", c.Percentage)})
		}
		top.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		})
		top.Render()
		fmt.Fprintln(w)
	}

	recent := newTable(w, "Recent expenses")
	recent.AppendHeader(table.Row{"Date", "Category", "Description", "Payment", "Amount"})
	for _, e := range d.Recent {
		recent.AppendRow(table.Row{e.Date.String(), opts.label(e.Category), e.Description, e.PaymentMethod.Label(), opts.Currency.Format(e.Amount)})
	}
	if len(d.Recent) == 0 {
		recent.AppendRow(table.Row{"", "", "No expenses recorded", "", ""})
	}
	recent.SetColumnConfigs([]table.ColumnConfig{{Number: 5, Align: text.AlignRight}})
	recent.Render()
}

func printCategoryTotals(w io.Writer, title string, cats []aggregate.CategoryTotal, total core.Money, opts Options) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"Category", "Amount", "Count", "Share"})
	for _, c := range cats {
		t.AppendRow(table.Row{opts.label(c.Category), opts.Currency.Format(c.Amount), c.Count, fmt.Sprintf("%.1f%%", c.Percentage)})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{opts.bold("Total"), opts.bold(opts.Currency.Format(total)), "", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

// PrintReport renders the series with one column per active category,
// followed by the category comparison.
func PrintReport(w io.Writer, r aggregate.Report, opts Options) {
	fmt.Fprintf(w, "Report by %s up to %s\n\n", r.Period, r.Today)

	series := newTable(w, "Spending over time")
	header := table.Row{"Period"}
	for _, c := range r.ActiveCategories {
		header = append(header, opts.label(c))
	}
	header = append(header, "Total")
	series.AppendHeader(header)

	var grand core.Money
	for _, b := range r.Series {
		row := table.Row{b.Label}
		for _, c := range r.ActiveCategories {
			row = append(row, opts.Currency.Format(b.ByCategory[c]))
		}
		row = append(row, opts.Currency.Format(b.Total))
		series.AppendRow(row)
		grand = grand.Add(b.Total)
	}
	footer := table.Row{opts.bold("Total")}
	for range r.ActiveCategories {
		footer = append(footer, "")
	}
	footer = append(footer, opts.bold(opts.Currency.Format(grand)))
	series.AppendSeparator()
	series.AppendFooter(footer)

	configs := make([]table.ColumnConfig, 0, len(header)-1)
	for i := 2; i <= len(header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	series.SetColumnConfigs(configs)
	series.Render()
	fmt.Fprintln(w)

	cmp := newTable(w, fmt.Sprintf("This %s against the previous one", r.Period))
	cmp.AppendHeader(table.Row{"Category", "Current", "Previous", "Change"})
	for _, c := range r.Comparison {
		cmp.AppendRow(table.Row{opts.label(c.Category), opts.Currency.Format(c.Current), opts.Currency.Format(c.Previous), opts.direction(c.Change)})
	}
	cmp.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	cmp.Render()
}
