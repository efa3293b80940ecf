// Package blob persists the whole expense collection as one JSON array
// under a single key. Every mutation is a full read followed by a full write.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"pixnox/internal/core"
	"pixnox/internal/storage"
)

// DefaultKey is the storage key the collection lives under.
const DefaultKey = "financepixnox_expenses"

type Store struct {
	mu     sync.Mutex
	kv     KV
	key    string
	now    func() time.Time
	logger *slog.Logger
}

func New(kv KV, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, key: key, now: time.Now, logger: logger}
}

// ErrUnreadable is returned by mutations when the stored content is not a
// JSON array; writing would replace it.
var ErrUnreadable = errors.New("stored expenses unreadable")

// collection is the decoded array. Elements that do not decode are kept
// verbatim in skipped and written back after the valid records.
type collection struct {
	items    []core.Expense
	skipped  []json.RawMessage
	readable bool
}

// load reads the collection. Missing content is empty. Content that is not
// an array reads as empty but is not readable; array elements that fail to
// decode are skipped with a warning. Only KV failures are errors.
func (s *Store) load(ctx context.Context) (collection, error) {
	c := collection{items: []core.Expense{}, readable: true}
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return c, fmt.Errorf("read %s: %w", s.key, err)
	}
	if !ok || len(raw) == 0 {
		return c, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		s.logger.WarnContext(ctx, "Stored expenses unreadable, treating as empty",
			"key", s.key, "bytes", len(raw), "error", err)
		c.readable = false
		return c, nil
	}
	for i, el := range elems {
		var e core.Expense
		if err := json.Unmarshal(el, &e); err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable stored expense",
				"key", s.key, "index", i, "error", err)
			c.skipped = append(c.skipped, el)
			continue
		}
		c.items = append(c.items, e)
	}
	return c, nil
}

// writable returns c for a mutation, refusing content it could not read.
func (s *Store) writable(ctx context.Context) (collection, error) {
	c, err := s.load(ctx)
	if err != nil {
		return c, err
	}
	if !c.readable {
		return c, fmt.Errorf("%w: key %s", ErrUnreadable, s.key)
	}
	return c, nil
}

func (s *Store) save(ctx context.Context, c collection) error {
	out := make([]any, 0, len(c.items)+len(c.skipped))
	for _, e := range c.items {
		out = append(out, e)
	}
	for _, el := range c.skipped {
		out = append(out, el)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, order storage.SortOrder) ([]core.Expense, error) {
	s.mu.Lock()
	c, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	order.Apply(c.items)
	return c.items, nil
}

// Create prepends the new record to the stored array.
func (s *Store) Create(ctx context.Context, n core.NewExpense) (core.Expense, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.writable(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	e := n.Materialize(uuid.NewString(), s.now())
	c.items = slices.Insert(c.items, 0, e)
	if err := s.save(ctx, c); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.writable(ctx)
	if err != nil {
		return false, err
	}
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(e core.Expense) bool { return e.ID == id })
	if len(c.items) == before {
		return false, nil
	}
	return true, s.save(ctx, c)
}

// Clear empties the collection, including content it could not read.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, collection{})
}
