package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pixnox/internal/aggregate"
	"pixnox/internal/core"
)

// Sheet names of the exported workbooks
const (
	SheetSummary    = "Summary"
	SheetCategories = "Categories"
	SheetRecent     = "Recent"
	SheetSeries     = "Series"
	SheetComparison = "Comparison"
)

// workbook wraps an excelize file with a bold header style.
type workbook struct {
	f      *excelize.File
	header int
	money  int
	first  bool
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating amount style: %w", err)
	}
	return &workbook{f: f, header: header, money: money, first: true}, nil
}

// sheet creates a sheet, reusing the default one for the first call, and
// writes a bold header row.
func (wb *workbook) sheet(name string, header []any) error {
	if wb.first {
		if err := wb.f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("renaming sheet: %w", err)
		}
		wb.first = false
	} else if _, err := wb.f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}
	if len(header) == 0 {
		return nil
	}
	if err := wb.f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(name, "A1", end, wb.header)
}

// row writes values at 1-based row n.
func (wb *workbook) row(name string, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := wb.f.SetSheetRow(name, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", name, n, err)
	}
	return nil
}

// amounts applies the money format to columns [from, to] of rows [2, last].
func (wb *workbook) amounts(name string, from, to, last int) error {
	if last < 2 {
		return nil
	}
	start, err := excelize.CoordinatesToCellName(from, 2)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(to, last)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(name, start, end, wb.money)
}

func (wb *workbook) write(w io.Writer) error {
	defer wb.f.Close()
	wb.f.SetActiveSheet(0)
	if err := wb.f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// units is the spreadsheet value of an amount; cells carry numbers, not text.
func units(m core.Money) float64 { return m.Units() }

// WriteDashboardXLSX writes the dashboard as a workbook with summary,
// category and recent-expense sheets.
func WriteDashboardXLSX(w io.Writer, d aggregate.Dashboard, cfg *Config) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}

	if err := wb.sheet(SheetSummary, []any{"Metric", "Value"}); err != nil {
		return err
	}
	summary := [][]any{
		{"Period", d.Period.String()},
		{"From", d.Current.Start.String()},
		{"To", d.Current.Last().String()},
		{"Total", units(d.Summary.Total)},
		{"Expenses", d.Summary.Count},
		{"Average", units(d.Summary.Average)},
		{"Daily average", units(d.Summary.DailyAverage)},
		{"Previous period", units(d.PreviousTotal)},
		{"Change %", d.Change.Percent},
		{"Direction", string(d.Change.Direction)},
	}
	for i, r := range summary {
		if err := wb.row(SheetSummary, i+2, r); err != nil {
			return err
		}
	}

	if err := wb.sheet(SheetCategories, []any{"Category", "Key", "Amount", "Count", "Share %"}); err != nil {
		return err
	}
	for i, c := range d.Categories {
		if err := wb.row(SheetCategories, i+2, []any{cfg.Label(c.Category), c.Category.String(), units(c.Amount), c.Count, c.Percentage}); err != nil {
			return err
		}
	}
	if err := wb.amounts(SheetCategories, 3, 3, len(d.Categories)+1); err != nil {
		return err
	}

	if err := wb.sheet(SheetRecent, []any{"ID", "Date", "Category", "Description", "Payment method", "Amount"}); err != nil {
		return err
	}
	for i, e := range d.Recent {
		if err := wb.row(SheetRecent, i+2, []any{e.ID, e.Date.String(), cfg.Label(e.Category), e.Description, e.PaymentMethod.Label(), units(e.Amount)}); err != nil {
			return err
		}
	}
	if err := wb.amounts(SheetRecent, 6, 6, len(d.Recent)+1); err != nil {
		return err
	}

	return wb.write(w)
}

// WriteReportXLSX writes the report as a series sheet with one column per
// active category and a comparison sheet.
func WriteReportXLSX(w io.Writer, r aggregate.Report, cfg *Config) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}

	header := []any{"Period", "From", "To"}
	for _, c := range r.ActiveCategories {
		header = append(header, cfg.Label(c))
	}
	header = append(header, "Total")
	if err := wb.sheet(SheetSeries, header); err != nil {
		return err
	}
	for i, b := range r.Series {
		row := []any{b.Label, b.Start.String(), b.Last().String()}
		for _, c := range r.ActiveCategories {
			row = append(row, units(b.ByCategory[c]))
		}
		row = append(row, units(b.Total))
		if err := wb.row(SheetSeries, i+2, row); err != nil {
			return err
		}
	}
	if err := wb.amounts(SheetSeries, 4, len(header), len(r.Series)+1); err != nil {
		return err
	}

	if err := wb.sheet(SheetComparison, []any{"Category", "Key", "Current", "Previous", "Change %", "Direction"}); err != nil {
		return err
	}
	for i, c := range r.Comparison {
		row := []any{cfg.Label(c.Category), c.Category.String(), units(c.Current), units(c.Previous), c.Percent, string(c.Direction)}
		if err := wb.row(SheetComparison, i+2, row); err != nil {
			return err
		}
	}
	if err := wb.amounts(SheetComparison, 3, 4, len(r.Comparison)+1); err != nil {
		return err
	}

	return wb.write(w)
}
