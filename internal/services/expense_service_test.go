package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"pixnox/internal/core"
	"pixnox/internal/log"
	"pixnox/internal/storage"
	"pixnox/internal/storage/memory"
	"pixnox/internal/storage/storagetest"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
	closed bool
}

func (p *recordingPublisher) record(ev string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) PublishExpenseCreated(_ context.Context, e core.Expense) error {
	return p.record("created:" + e.ID)
}

func (p *recordingPublisher) PublishExpenseDeleted(_ context.Context, id string) error {
	return p.record("deleted:" + id)
}

func (p *recordingPublisher) PublishExpensesCleared(context.Context) error {
	return p.record("cleared")
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

// listOnly hides the optional capabilities of the wrapped repository.
type listOnly struct{ storage.Repository }

func TestExpenseService_Create(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewExpenseService(memory.New(), pub, quietLogger())
	changes := 0
	svc.OnChange(func() { changes++ })

	tests := []struct {
		name    string
		in      core.NewExpense
		wantErr error
	}{
		{"valid", storagetest.Sample(1200, core.CategoryFood, core.NewDate(2024, 1, 5)), nil},
		{"zero amount", storagetest.Sample(0, core.CategoryFood, core.NewDate(2024, 1, 5)), core.ErrInvalidAmount},
		{"unknown category", storagetest.Sample(100, "pets", core.NewDate(2024, 1, 5)), core.ErrInvalidCategory},
		{"missing date", storagetest.Sample(100, core.CategoryFood, core.Date{}), core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if changes != 1 {
		t.Errorf("change hooks ran %d times, want 1", changes)
	}
	if len(pub.events) != 1 {
		t.Errorf("events = %v, want one created event", pub.events)
	}
}

func TestExpenseService_PublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewExpenseService(memory.New(), pub, quietLogger())

	e, err := svc.Create(ctx, storagetest.Sample(500, core.CategoryBills, core.NewDate(2024, 2, 1)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	found, err := svc.Delete(ctx, e.ID)
	if err != nil || !found {
		t.Fatalf("Delete() = %v, %v", found, err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	want := []string{"created:" + e.ID, "deleted:" + e.ID, "cleared"}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %v, want %v", pub.events, want)
	}
	for i := range want {
		if pub.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, pub.events[i], want[i])
		}
	}
}

func TestExpenseService_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewExpenseService(memory.New(), pub, quietLogger())
	changes := 0
	svc.OnChange(func() { changes++ })

	for _, id := range []string{"missing", "", "  "} {
		found, err := svc.Delete(ctx, id)
		if err != nil || found {
			t.Errorf("Delete(%q) = %v, %v; want false, nil", id, found, err)
		}
	}
	if changes != 0 || len(pub.events) != 0 {
		t.Errorf("no-op deletes should not notify: changes=%d events=%v", changes, pub.events)
	}
}

func TestExpenseService_ClearUnsupported(t *testing.T) {
	svc := NewExpenseService(listOnly{memory.New()}, nil, quietLogger())
	if svc.CanClear() {
		t.Error("CanClear() = true for a repository without Clear")
	}
	if err := svc.Clear(context.Background()); !errors.Is(err, ErrClearUnsupported) {
		t.Errorf("Clear() error = %v, want ErrClearUnsupported", err)
	}
}

func TestExpenseService_NilPublisher(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil, quietLogger())
	if _, err := svc.Create(context.Background(), storagetest.Sample(100, core.CategoryOther, core.NewDate(2024, 1, 1))); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestExpenseService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := NewExpenseService(memory.New(), nil, quietLogger())
		if err := service.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("closes publisher", func(t *testing.T) {
		pub := &recordingPublisher{}
		service := NewExpenseService(memory.New(), pub, quietLogger())
		if err := service.Close(); err != nil {
			t.Fatal(err)
		}
		if !pub.closed {
			t.Error("publisher was not closed")
		}
	})
}
