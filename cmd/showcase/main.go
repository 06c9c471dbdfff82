package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"showcase/internal/activity"
	"showcase/internal/cache"
	"showcase/internal/cli"
	apphttp "showcase/internal/http"
	applog "showcase/internal/log"
	"showcase/internal/metrics"
	"showcase/internal/middleware/ratelimit"
	"showcase/internal/rates"
	"showcase/internal/seed"
	"showcase/internal/session"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting showcase", "port", cfg.Port, "journal", cfg.JournalBackend, "amqp", cfg.AMQPEnabled())

	data, err := loadSeed(cfg.SeedFile)
	if err != nil {
		logger.Error("Failed to load seed data", "error", err, "path", cfg.SeedFile)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendRes := cli.InitBackend(ctx, logger, cfg, "showcase")
	defer func() {
		if err := backendRes.Cleanup(); err != nil {
			logger.Error("Failed to close activity backend", "error", err)
		}
	}()

	collector := metrics.New()
	recorder := activity.NewRecorder(backendRes.Journal, backendRes.Publisher, logger).
		OnRecord(func(e activity.Event) {
			collector.ActivityEvents.WithLabelValues(e.Demo, e.Kind).Inc()
		})

	ratesClient := rates.NewClient(cfg.RatesBaseURL, nil)
	tracker := rates.NewTracker(ratesClient, cfg.RatesRefreshInterval, cfg.RatesWatch, logger.Slog()).
		OnError(func(string, error) { collector.RatesRefreshErrors.Inc() })

	budget, _ := cfg.Budget()
	sessions := session.NewStore(data, session.Options{
		MaxSessions: cfg.SessionMax,
		TTL:         cfg.SessionTTL,
		ReplyDelay:  cfg.ChatReplyDelay,
		Budget:      budget,
		OnReply:     apphttp.ChatReplyRecorder(recorder),
		Logger:      logger.Slog(),
	})

	sweeper := cache.NewManager(logger.Slog())
	sweeper.Register(sessions.Cleaner())

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Seed:       data,
		Sessions:   sessions,
		SessionTTL: cfg.SessionTTL,
		Activity:   recorder,
		Rates:      tracker,
		History:    ratesClient,
		Limiter:    limiter,
		Metrics:    collector,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return tracker.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx, sweepInterval) })
	g.Go(func() error { return limiter.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Showcase stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Showcase stopped")
}

func loadSeed(path string) (*seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.Load(path)
}
