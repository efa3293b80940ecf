// Package services orchestrates repositories, events and cached views.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pixnox/internal/core"
	"pixnox/internal/log"
	"pixnox/internal/metrics"
	"pixnox/internal/storage"
)

var ErrClearUnsupported = errors.New("clear not supported by this backend")

// EventPublisher announces mutations. *amqp.Client implements it.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
	PublishExpenseDeleted(ctx context.Context, id string) error
	PublishExpensesCleared(ctx context.Context) error
}

// ExpenseService applies mutations to the repository, then publishes an
// event and runs change hooks. Events are best effort.
type ExpenseService struct {
	repo      storage.Repository
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *log.Logger
	sl        *log.StructuredLogger
	onChange  []func()
}

// NewExpenseService creates the service. publisher may be nil.
func NewExpenseService(repo storage.Repository, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	logger = logger.WithComponent(log.ComponentExpense)
	return &ExpenseService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		sl:        log.NewStructuredLogger(logger),
	}
}

func (s *ExpenseService) WithMetrics(m *metrics.Metrics) *ExpenseService {
	s.metrics = m
	return s
}

// OnChange registers fn to run after every successful mutation.
func (s *ExpenseService) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *ExpenseService) List(ctx context.Context, order storage.SortOrder) ([]core.Expense, error) {
	list, err := s.repo.List(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return list, nil
}

// Create validates n, stores it and publishes expense.created.
func (s *ExpenseService) Create(ctx context.Context, n core.NewExpense) (core.Expense, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return core.Expense{}, err
	}

	e, err := s.repo.Create(ctx, n)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.metrics.ExpenseCreated()
	s.sl.LogExpenseCreated(ctx, e.ID, e.Description, e.Amount.Cents, e.Category.String())
	s.changed()

	if s.publisher != nil {
		err := s.publisher.PublishExpenseCreated(ctx, e)
		s.published(ctx, "expense.created", e.ID, err)
	}
	return e, nil
}

// Delete removes id and reports whether it existed. Only an actual removal
// publishes expense.deleted.
func (s *ExpenseService) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	s.sl.LogExpenseDeleted(ctx, id, found)
	if !found {
		return false, nil
	}
	s.metrics.ExpenseDeleted()
	s.changed()

	if s.publisher != nil {
		err := s.publisher.PublishExpenseDeleted(ctx, id)
		s.published(ctx, "expense.deleted", id, err)
	}
	return true, nil
}

// Clear removes every record when the repository supports it.
func (s *ExpenseService) Clear(ctx context.Context) error {
	c, ok := s.repo.(storage.Clearer)
	if !ok {
		return ErrClearUnsupported
	}
	if err := c.Clear(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	s.metrics.ExpensesCleared()
	s.logger.InfoContext(ctx, "Expenses cleared", log.FieldOperation, log.OpClear)
	s.changed()

	if s.publisher != nil {
		err := s.publisher.PublishExpensesCleared(ctx)
		s.published(ctx, "expenses.cleared", "", err)
	}
	return nil
}

// CanClear reports whether Clear is supported.
func (s *ExpenseService) CanClear() bool {
	_, ok := s.repo.(storage.Clearer)
	return ok
}

func (s *ExpenseService) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

func (s *ExpenseService) published(ctx context.Context, eventType, id string, err error) {
	s.metrics.EventPublished(eventType, err)
	if err != nil {
		// The mutation already succeeded
		s.sl.LogError(ctx, "Failed to publish expense event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithEvent(eventType, id).WithErrorType(log.ErrorTypeNetwork))
	}
}

// Close closes both storage and publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.repo.(storage.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
