// Package activity records what visitors do in the demos. The journal is
// for observability only; demo state is never rebuilt from it.
package activity

import (
	"context"
	"time"
)

// Demo names.
const (
	DemoShop      = "shop"
	DemoTasks     = "tasks"
	DemoBudget    = "budget"
	DemoChat      = "chat"
	DemoConverter = "converter"
)

// Event kinds.
const (
	KindFilterChanged      = "filter.changed"
	KindCartAdded          = "cart.added"
	KindCartRemoved        = "cart.removed"
	KindCartQuantity       = "cart.quantity"
	KindCartCleared        = "cart.cleared"
	KindTaskAdded          = "task.added"
	KindTaskMoved          = "task.moved"
	KindTaskDeleted        = "task.deleted"
	KindTransactionAdded   = "transaction.added"
	KindTransactionDeleted = "transaction.deleted"
	KindBudgetChanged      = "budget.changed"
	KindMessageSent        = "message.sent"
	KindMessageReceived    = "message.received"
	KindConversionChanged  = "conversion.changed"
	KindConversionSwapped  = "conversion.swapped"
)

type Event struct {
	// ID is assigned by the journal.
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Demo      string    `json:"demo"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// Journal stores events and lists the most recent ones, newest first.
type Journal interface {
	Record(ctx context.Context, e Event) (Event, error)
	Recent(ctx context.Context, limit int) ([]Event, error)
	Ping(ctx context.Context) error
	Close() error
}

// Publisher forwards events to other processes.
type Publisher interface {
	PublishActivity(ctx context.Context, e Event) error
}
