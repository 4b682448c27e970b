package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/email"
	"github.com/Domenick1991/airtickets/internal/events"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/rabbitmq"
)

type consumer interface {
	Consume(ctx context.Context, handler events.Handler) error
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	workerLogger := logger.SetupDefault(os.Stdout, cfg.Log.Level).With(slog.String("component", "worker"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, workerLogger)
	stop()
	if err != nil {
		workerLogger.Error("worker failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	workerLogger.Info("worker stopped")
}

// run returns only after every consumer it opened has been closed.
func run(ctx context.Context, cfg *config.Config, workerLogger *slog.Logger) error {
	var source consumer
	switch cfg.Events.Driver {
	case config.EventsKafka:
		c := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, workerLogger)
		defer func() {
			if err := c.Close(); err != nil {
				workerLogger.Warn("close kafka consumer", slog.String("error", err.Error()))
			}
		}()
		source = c
	case config.EventsRabbitMQ:
		source = rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, workerLogger)
	default:
		return fmt.Errorf("events.driver must be kafka or rabbitmq for the worker, got %q", cfg.Events.Driver)
	}

	sender := email.NewSender(workerLogger)
	workerLogger.Info("consuming booking events", slog.String("driver", cfg.Events.Driver), slog.String("topic", cfg.EventsTopic()))
	if err := source.Consume(ctx, sender.Send); err != nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}
	return nil
}
