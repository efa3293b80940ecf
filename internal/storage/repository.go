// Package storage defines the expense repository capability and its SQL
// implementations. In-memory and blob stores live in subpackages.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pixnox/internal/core"
)

// SortOrder selects how List orders records.
type SortOrder string

const (
	// SortDateDesc is newest first ("-date").
	SortDateDesc SortOrder = "-date"
	// SortDateAsc is oldest first ("date").
	SortDateAsc SortOrder = "date"
)

var ErrInvalidSort = errors.New("invalid sort order")

// ParseSortOrder accepts "-date" or "date"; empty means newest first.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.TrimSpace(s)) {
	case "", SortDateDesc:
		return SortDateDesc, nil
	case SortDateAsc:
		return SortDateAsc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

// Apply sorts es in place.
func (o SortOrder) Apply(es []core.Expense) {
	if o == SortDateAsc {
		core.SortOldestFirst(es)
		return
	}
	core.SortNewestFirst(es)
}

// Repository is the persistence capability the services depend on.
type Repository interface {
	// List returns a snapshot of every stored record.
	List(ctx context.Context, order SortOrder) ([]core.Expense, error)
	// Create assigns ID and CreatedAt and stores the record.
	Create(ctx context.Context, n core.NewExpense) (core.Expense, error)
	// Delete removes the record with id and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// Clearer is implemented by repositories that can drop every record.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Closer is implemented by repositories holding resources.
type Closer interface {
	Close() error
}
