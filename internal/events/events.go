// Package events defines the booking lifecycle messages shared by the API
// process and the notifications worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeBookingCreated   = "booking_created"
	TypeBookingCancelled = "booking_cancelled"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"booking_id"`
	IdentityID int64     `json:"identity_id"`
	Email      string    `json:"email,omitempty"`
	FlightID   int64     `json:"flight_id"`
	Seat       string    `json:"seat"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Key partitions events of one booking together.
func (e BookingEvent) Key() string {
	return fmt.Sprintf("booking-%d", e.BookingID)
}

// Publisher is implemented by the kafka producer and the rabbitmq publisher.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }

func Decode(data []byte) (BookingEvent, error) {
	var e BookingEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if e.Type == "" {
		return BookingEvent{}, fmt.Errorf("decode booking event: missing type")
	}
	return e, nil
}

// Handler processes one decoded event. Consumers stop on a returned error.
type Handler func(ctx context.Context, event BookingEvent) error
