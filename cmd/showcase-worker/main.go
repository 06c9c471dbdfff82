package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"showcase/internal/amqp"
	"showcase/internal/cli"
	applog "showcase/internal/log"
	"showcase/internal/worker"
)

const maintenanceInterval = time.Hour

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the activity worker")
		os.Exit(1)
	}

	logger.Info("Starting showcase-worker", "queue", cfg.AMQPQueue, "journal", cfg.JournalBackend)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// The worker only consumes; it must not republish what it journals.
	journalCfg := *cfg
	journalCfg.AMQPURL = ""
	backendRes := cli.InitBackend(ctx, logger, &journalCfg, "showcase-worker")
	defer func() {
		if err := backendRes.Cleanup(); err != nil {
			logger.Error("Failed to close journal", "error", err)
		}
	}()

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, "showcase-worker")
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	w := worker.NewActivityWorker(backendRes.Journal, cfg.JournalRetention, logger.Slog())
	if err := w.RestoreTotals(ctx); err != nil {
		logger.Warn("Starting with empty activity totals", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := consumer.ConsumeActivity(gctx, w.HandleActivity)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error { return w.RunMaintenance(gctx, maintenanceInterval) })

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped", "totals", w.Totals())
}
