// Package rabbitmq carries booking events over AMQP as an alternative to
// kafka. Messages go through the default exchange, routed by queue name.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish opens a short-lived connection, declares the durable queue named
// topic and sends one persistent message. key travels as the message id.
func (p *Publisher) Publish(ctx context.Context, topic, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declareQueue(ch, topic); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", topic, false, false, newPublishing(key, body, time.Now()))
}

func newPublishing(key string, body []byte, now time.Time) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    now.UTC(),
		Body:         body,
	}
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("rabbitmq queue declare %s: %w", name, err)
	}
	return q, nil
}

var _ events.Publisher = (*Publisher)(nil)
