// Package adapters bridges the expense service to consumers that run in
// the same process.
package adapters

import (
	"context"

	"pixnox/internal/amqp"
	"pixnox/internal/core"
	"pixnox/internal/worker"
)

// InlineMirror implements services.EventPublisher by handing each event
// straight to a MirrorWorker. It is used when no broker is configured but
// a mirror is, so the spreadsheet still follows the store.
type InlineMirror struct {
	worker *worker.MirrorWorker
}

func NewInlineMirror(w *worker.MirrorWorker) *InlineMirror {
	return &InlineMirror{worker: w}
}

// PublishExpenseCreated implements services.EventPublisher
func (a *InlineMirror) PublishExpenseCreated(ctx context.Context, e core.Expense) error {
	return a.worker.HandleEvent(ctx, amqp.NewExpenseCreatedMessage(e))
}

// PublishExpenseDeleted implements services.EventPublisher
func (a *InlineMirror) PublishExpenseDeleted(ctx context.Context, id string) error {
	return a.worker.HandleEvent(ctx, amqp.NewExpenseDeletedMessage(id))
}

// PublishExpensesCleared implements services.EventPublisher
func (a *InlineMirror) PublishExpensesCleared(ctx context.Context) error {
	return a.worker.HandleEvent(ctx, amqp.NewExpensesClearedMessage())
}
