// Package email renders booking notifications. Delivery is a structured log
// line; there is no SMTP transport.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/airtickets/internal/events"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger}
}

// Send is an events.Handler. Events without a recipient are dropped.
func (s *Sender) Send(ctx context.Context, event events.BookingEvent) error {
	msg, ok := Render(event)
	if !ok {
		s.logger.DebugContext(ctx, "notification skipped", slog.Int64("booking_id", event.BookingID), slog.String("type", event.Type))
		return nil
	}
	s.logger.InfoContext(ctx, "notification sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int64("booking_id", event.BookingID),
	)
	return nil
}

func Render(event events.BookingEvent) (Message, bool) {
	if event.Email == "" {
		return Message{}, false
	}
	switch event.Type {
	case events.TypeBookingCreated:
		return Message{
			To:      event.Email,
			Subject: fmt.Sprintf("Booking #%d confirmed", event.BookingID),
			Body:    fmt.Sprintf("Seat %s on flight %d is yours.", event.Seat, event.FlightID),
		}, true
	case events.TypeBookingCancelled:
		return Message{
			To:      event.Email,
			Subject: fmt.Sprintf("Booking #%d cancelled", event.BookingID),
			Body:    fmt.Sprintf("Seat %s on flight %d has been released.", event.Seat, event.FlightID),
		}, true
	}
	return Message{}, false
}
