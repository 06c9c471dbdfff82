// Package backend builds the activity journal and optional publisher
// selected by configuration.
package backend

import (
	"context"

	"showcase/internal/activity"
)

// CleanupFunc releases resources held by a Result.
type CleanupFunc func() error

// Result is what the factory hands to the command. Publisher is nil when
// AMQP is disabled or unreachable.
type Result struct {
	Journal   activity.Journal
	Publisher activity.Publisher
	Cleanup   CleanupFunc
}

type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type JournalType

	SQLiteDBPath string
	MemorySize   int

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// Source tags published messages with the publishing process.
	Source string
}

type JournalType string

const (
	SQLiteJournal JournalType = "sqlite"
	MemoryJournal JournalType = "memory"
)

func (jt JournalType) String() string {
	return string(jt)
}

func (jt JournalType) IsValid() bool {
	switch jt {
	case SQLiteJournal, MemoryJournal:
		return true
	default:
		return false
	}
}
