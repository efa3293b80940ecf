// Package memory is an in-process ExpenseMirror for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"pixnox/internal/core"
	ports "pixnox/internal/sheets"
)

var (
	_ ports.ExpenseMirror = (*Store)(nil)
	_ ports.Clearer       = (*Store)(nil)
)

type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		return "", errors.New("expense without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(e.ID); i >= 0 {
		return rowRef(i), nil
	}
	s.items = append(s.items, e)
	return rowRef(len(s.items) - 1), nil
}

func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true, nil
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	return nil
}

// Rows returns a copy of the mirrored expenses in row order.
func (s *Store) Rows() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(e core.Expense) bool { return e.ID == id })
}

// Row 1 is the header in a real sheet.
func rowRef(i int) string {
	return fmt.Sprintf("mem:%d", i+2)
}
