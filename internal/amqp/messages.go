package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pixnox/internal/core"
)

// EventType names an expense mutation.
type EventType string

const (
	EventExpenseCreated  EventType = "expense.created"
	EventExpenseDeleted  EventType = "expense.deleted"
	EventExpensesCleared EventType = "expenses.cleared"
)

var ErrInvalidMessage = errors.New("invalid event message")

// ExpenseEventMessage is published after every successful mutation.
// Created events carry the full record so consumers need no read-back.
type ExpenseEventMessage struct {
	Type      EventType     `json:"type"`
	ID        string        `json:"id,omitempty"`
	Expense   *core.Expense `json:"expense,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewExpenseCreatedMessage(e core.Expense) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Type:      EventExpenseCreated,
		ID:        e.ID,
		Expense:   &e,
		Timestamp: time.Now().UTC(),
	}
}

func NewExpenseDeletedMessage(id string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Type:      EventExpenseDeleted,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func NewExpensesClearedMessage() *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Type:      EventExpensesCleared,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate checks that the payload matches the event type.
func (m *ExpenseEventMessage) Validate() error {
	switch m.Type {
	case EventExpenseCreated:
		if m.Expense == nil || m.Expense.ID == "" {
			return fmt.Errorf("%w: %s without expense", ErrInvalidMessage, m.Type)
		}
	case EventExpenseDeleted:
		if m.ID == "" {
			return fmt.Errorf("%w: %s without id", ErrInvalidMessage, m.Type)
		}
	case EventExpensesCleared:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, m.Type)
	}
	return nil
}

// ExpenseEventMessageFromJSON decodes and validates a message.
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
