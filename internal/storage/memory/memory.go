// Package memory is a process-local expense repository.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"pixnox/internal/core"
	"pixnox/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	items []core.Expense
	now   func() time.Time
}

func New(seed ...core.Expense) *Store {
	return &Store{items: slices.Clone(seed), now: time.Now}
}

// WithClock replaces the creation clock, for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) List(_ context.Context, order storage.SortOrder) ([]core.Expense, error) {
	s.mu.Lock()
	out := slices.Clone(s.items)
	s.mu.Unlock()
	if out == nil {
		out = []core.Expense{}
	}
	order.Apply(out)
	return out, nil
}

func (s *Store) Create(_ context.Context, n core.NewExpense) (core.Expense, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := n.Materialize(uuid.NewString(), s.now())
	s.items = append(s.items, e)
	return e, nil
}

func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(e core.Expense) bool { return e.ID == id })
	if i < 0 {
		return false, nil
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}
