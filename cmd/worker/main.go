package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/internal/platform"
	"github.com/Mhdiwe/Viral/tasks"
	"github.com/Mhdiwe/Viral/worker"
)

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
	processor.Listen(ctx, tasks.All...)
}
