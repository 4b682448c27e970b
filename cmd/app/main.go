package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/bootstrap"
	"github.com/Domenick1991/airtickets/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	appLogger := logger.SetupDefault(os.Stdout, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	appLogger.Info("http server listening",
		slog.String("addr", cfg.HTTP.Address),
		slog.String("database", cfg.Database.Driver),
		slog.String("events", cfg.Events.Driver),
	)
	if err := bootstrap.Run(ctx, cfg, app.Handler); err != nil {
		appLogger.Error("server error", slog.String("error", err.Error()))
		app.Close()
		os.Exit(1)
	}
	appLogger.Info("http server stopped")
}
