package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"showcase/internal/activity"
	"showcase/internal/amqp"
	"showcase/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
	// connectAMQP is swapped in tests.
	connectAMQP func(url, exchange, queue, source string) (*amqp.Client, error)
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:      logger.With("component", "backend"),
		connectAMQP: amqp.NewClient,
	}
}

// Create opens the journal and, when configured, the AMQP publisher. A
// broker that cannot be reached is logged and skipped.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		journal activity.Journal
		err     error
	)
	switch config.Type {
	case SQLiteJournal:
		journal, err = storage.NewSQLiteJournal(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite journal: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite journal", "db_path", config.SQLiteDBPath)
	case MemoryJournal:
		journal = activity.NewMemoryJournal(config.MemorySize)
		f.logger.InfoContext(ctx, "Initialized memory journal", "size", config.MemorySize)
	default:
		return nil, fmt.Errorf("unsupported journal type: %s", config.Type)
	}

	result := &Result{Journal: journal}
	var client *amqp.Client
	if config.AMQPURL != "" {
		client, err = f.connectAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, config.Source)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without publishing", "error", err)
		} else {
			result.Publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if client != nil {
			errs = append(errs, client.Close())
		}
		errs = append(errs, journal.Close())
		return errors.Join(errs...)
	}
	return result, nil
}
