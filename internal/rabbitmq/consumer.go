package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/airtickets/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	prefetch       = 50
	maxBackoff     = 30 * time.Second
	initialBackoff = time.Second
)

type Consumer struct {
	url    string
	queue  string
	logger *slog.Logger
}

func NewConsumer(url, queue string, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{url: url, queue: queue, logger: logger}
}

// Consume keeps a connection open, reconnecting with exponential backoff,
// until ctx is done.
func (c *Consumer) Consume(ctx context.Context, handler events.Handler) error {
	backoff := initialBackoff
	for {
		err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("rabbitmq consumer disconnected", slog.String("error", err.Error()), slog.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

func (c *Consumer) consumeOnce(ctx context.Context, handler events.Handler) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.logger.Warn("rabbitmq qos", slog.String("error", err.Error()))
	}
	if _, err := declareQueue(ch, c.queue); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}

	for d := range deliveries {
		if err := c.handle(ctx, d.Body, handler); err != nil {
			// Rejected without requeue so a poison message cannot spin.
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(ctx context.Context, body []byte, handler events.Handler) error {
	event, err := events.Decode(body)
	if err != nil {
		c.logger.Warn("skip rabbitmq message", slog.String("error", err.Error()))
		return err
	}
	if err := handler(ctx, event); err != nil {
		c.logger.Error("handle booking event", slog.Int64("booking_id", event.BookingID), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
