// Package sheets defines the outbound port for mirroring expenses into a
// spreadsheet. Adapters live in the google and memory subpackages.
package sheets

import (
	"context"

	"pixnox/internal/core"
)

type (
	// ExpenseMirror keeps a copy of every stored expense in an external sheet.
	// Both operations must tolerate redelivery of the same event.
	ExpenseMirror interface {
		// Append adds e unless a row with its ID is already present.
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
		// Delete removes the row for id, reporting whether one existed.
		Delete(ctx context.Context, id string) (bool, error)
	}

	// Clearer is implemented by mirrors that can drop every data row.
	Clearer interface {
		Clear(ctx context.Context) error
	}
)
