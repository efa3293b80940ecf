package google

import (
	"fmt"
	"strings"
	"time"

	"pixnox/internal/core"
)

// Sheet layout, one expense per row below the header.
var headerRow = []any{"ID", "Date", "Category", "Description", "Amount", "Payment method", "Created at"}

const lastColumn = "G"

func encodeRow(e core.Expense) []any {
	return []any{
		e.ID,
		e.Date.String(),
		e.Category.String(),
		e.Description,
		e.Amount.Units(),
		e.PaymentMethod.String(),
		e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// findRowByID returns the zero-based row index whose first cell equals id,
// or -1. values is column A read from row 1, so the header never matches
// a generated id.
func findRowByID(values [][]any, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if cellString(row[0]) == id {
			return i
		}
	}
	return -1
}

func cellString(v any) string {
	return strings.TrimSpace(fmt.Sprint(v))
}
