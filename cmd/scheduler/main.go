package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/internal/platform"
	"github.com/Mhdiwe/Viral/worker"
	"github.com/robfig/cron/v3"
)

// pollSpec is how often rendering videos are checked against the render service.
const pollSpec = "@every 30s"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	platform.SetupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := platform.NewDBConnection(cfg)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	rdb, err := platform.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	services, err := platform.NewServices(ctx, cfg)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	processor := worker.NewProcessor(db, rdb, services.Pipeline)

	// SkipIfStillRunning keeps a slow poll from overlapping the next one.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err = c.AddFunc(pollSpec, func() {
		if err := processor.PollRendering(ctx); err != nil {
			slog.Error("render poll failed", "error", err)
		}
	})
	if err != nil {
		slog.Error("could not schedule render poll", "error", err)
		os.Exit(1)
	}

	c.Start()
	slog.Info("scheduler started", "schedule", pollSpec)
	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("scheduler stopped")
}
