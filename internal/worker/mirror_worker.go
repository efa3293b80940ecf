// Package worker applies expense events to a spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"

	"pixnox/internal/amqp"
	"pixnox/internal/core"
	"pixnox/internal/log"
	"pixnox/internal/metrics"
	"pixnox/internal/sheets"
	"pixnox/internal/storage"
)

// MirrorWorker keeps a sheets.ExpenseMirror in step with the event stream.
type MirrorWorker struct {
	mirror  sheets.ExpenseMirror
	logger  *log.Logger
	metrics *metrics.Metrics
}

func NewMirrorWorker(mirror sheets.ExpenseMirror, logger *log.Logger, m *metrics.Metrics) *MirrorWorker {
	return &MirrorWorker{
		mirror:  mirror,
		logger:  logger.WithComponent(log.ComponentWorker),
		metrics: m,
	}
}

// HandleEvent processes a single expense event from AMQP. A returned
// error makes the consumer requeue the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	w.logger.InfoContext(ctx, "Processing expense event",
		log.FieldEventType, msg.Type,
		log.FieldExpenseID, msg.ID)

	switch msg.Type {
	case amqp.EventExpenseCreated:
		if msg.Expense == nil {
			return fmt.Errorf("%w: created event without expense", amqp.ErrInvalidMessage)
		}
		return w.append(ctx, *msg.Expense)
	case amqp.EventExpenseDeleted:
		return w.delete(ctx, msg.ID)
	case amqp.EventExpensesCleared:
		return w.clear(ctx)
	default:
		return fmt.Errorf("%w: unknown type %q", amqp.ErrInvalidMessage, msg.Type)
	}
}

func (w *MirrorWorker) append(ctx context.Context, e core.Expense) error {
	ref, err := w.mirror.Append(ctx, e)
	w.metrics.MirrorOperation(log.OpAppend, err)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirrored expense",
		log.FieldExpenseID, e.ID,
		log.FieldMirrorRef, ref,
		log.FieldAmountCents, e.Amount.Cents,
		log.FieldCategory, e.Category)
	return nil
}

func (w *MirrorWorker) delete(ctx context.Context, id string) error {
	found, err := w.mirror.Delete(ctx, id)
	w.metrics.MirrorOperation(log.OpDelete, err)
	if err != nil {
		return fmt.Errorf("delete from mirror: %w", err)
	}
	if !found {
		// Already gone, or never mirrored
		w.logger.WarnContext(ctx, "Mirror row not found for deleted expense", log.FieldExpenseID, id)
		return nil
	}
	w.logger.InfoContext(ctx, "Removed mirrored expense", log.FieldExpenseID, id)
	return nil
}

func (w *MirrorWorker) clear(ctx context.Context) error {
	c, ok := w.mirror.(sheets.Clearer)
	if !ok {
		w.logger.WarnContext(ctx, "Mirror cannot be cleared, skipping")
		return nil
	}
	err := c.Clear(ctx)
	w.metrics.MirrorOperation(log.OpClear, err)
	if err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}
	w.logger.InfoContext(ctx, "Cleared mirror")
	return nil
}

// ReconcileResult summarises a startup reconciliation pass.
type ReconcileResult struct {
	Total  int
	Synced int
	Errors int
}

// Reconcile appends every stored expense to the mirror. Append is idempotent,
// so this recovers events missed while the worker was down.
func (w *MirrorWorker) Reconcile(ctx context.Context, repo storage.Repository) (ReconcileResult, error) {
	expenses, err := repo.List(ctx, storage.SortDateAsc)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("list expenses for reconcile: %w", err)
	}

	res := ReconcileResult{Total: len(expenses)}
	for _, e := range expenses {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := w.append(ctx, e); err != nil {
			if errors.Is(err, context.Canceled) {
				return res, err
			}
			w.logger.ErrorContext(ctx, "Failed to reconcile expense",
				log.FieldExpenseID, e.ID,
				log.FieldError, err)
			res.Errors++
			continue
		}
		res.Synced++
	}

	w.logger.InfoContext(ctx, "Startup reconcile completed",
		"total", res.Total,
		"synced", res.Synced,
		"errors", res.Errors)
	return res, nil
}
