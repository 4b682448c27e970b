package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/events"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/seatmap"
)

type BookingUseCase interface {
	ListActive(ctx context.Context, identityID int64) ([]domain.Booking, error)
	AvailableSeats(ctx context.Context, flightID int64) ([]domain.SeatCode, error)
	CreateBooking(ctx context.Context, identityID int64, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, identityID, bookingID int64) error
}

// Recorder receives ledger counters. *metrics.Collector implements it.
type Recorder interface {
	RecordBookingCreated()
	RecordBookingConflict()
	RecordBookingCancelled()
}

type IdentityLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Identity, error)
}

type CreateBookingInput struct {
	FlightID int64
	Seat     string
}

type BookingService struct {
	bookings   repository.BookingRepository
	flights    repository.FlightRepository
	identities IdentityLookup
	producer   events.Publisher
	topic      string
	recorder   Recorder
	now        func() time.Time
	logger     *slog.Logger
}

type BookingServiceOption func(*BookingService)

// WithProducer enables lifecycle events on topic.
func WithProducer(producer events.Publisher, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.topic = topic
	}
}

// WithIdentities lets events carry the holder's email.
func WithIdentities(identities IdentityLookup) BookingServiceOption {
	return func(s *BookingService) { s.identities = identities }
}

func WithRecorder(recorder Recorder) BookingServiceOption {
	return func(s *BookingService) { s.recorder = recorder }
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) { s.now = now }
}

func WithLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) { s.logger = logger }
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		flights:  flights,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) ListActive(ctx context.Context, identityID int64) ([]domain.Booking, error) {
	return s.bookings.ListActiveByIdentity(ctx, identityID, s.now())
}

// AvailableSeats returns the free seats of a flight in row-major order. The
// result is advisory: CreateBooking may still lose a race for any of them.
func (s *BookingService) AvailableSeats(ctx context.Context, flightID int64) ([]domain.SeatCode, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	booked, err := s.bookings.ActiveSeats(ctx, flightID, s.now())
	if err != nil {
		return nil, fmt.Errorf("load booked seats: %w", err)
	}
	return seatmap.Available(flight.Layout, seatmap.NewSet(booked...)), nil
}

func (s *BookingService) CreateBooking(ctx context.Context, identityID int64, input CreateBookingInput) (*domain.Booking, error) {
	if input.FlightID <= 0 {
		return nil, fmt.Errorf("%w: flight_id must be positive", domain.ErrValidation)
	}
	seat, err := domain.ParseSeatCode(input.Seat)
	if err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.Departed(s.now()) {
		return nil, fmt.Errorf("%w: flight %s has already departed", domain.ErrValidation, flight.FlightNumber)
	}
	if !seatmap.IsValid(flight.Layout, seat) {
		return nil, fmt.Errorf("%w: seat %s is outside the cabin of flight %s", domain.ErrValidation, seat, flight.FlightNumber)
	}

	booking := &domain.Booking{
		IdentityID: identityID,
		FlightID:   flight.ID,
		Seat:       seat,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrSeatConflict) && s.recorder != nil {
			s.recorder.RecordBookingConflict()
		}
		return nil, err
	}
	booking.Flight = flight

	if s.recorder != nil {
		s.recorder.RecordBookingCreated()
	}
	s.logger.InfoContext(ctx, "booking created",
		slog.Int64("booking_id", booking.ID),
		slog.Int64("identity_id", identityID),
		slog.Int64("flight_id", flight.ID),
		slog.String("seat", seat.String()),
	)
	s.publish(ctx, events.TypeBookingCreated, booking)
	return booking, nil
}

// CancelBooking releases the caller's seat. Unknown, foreign and already
// cancelled bookings are a successful no-op.
func (s *BookingService) CancelBooking(ctx context.Context, identityID, bookingID int64) error {
	cancelled, err := s.bookings.Cancel(ctx, identityID, bookingID)
	if err != nil {
		return err
	}
	if cancelled == nil {
		return nil
	}

	if s.recorder != nil {
		s.recorder.RecordBookingCancelled()
	}
	s.logger.InfoContext(ctx, "booking cancelled",
		slog.Int64("booking_id", cancelled.ID),
		slog.Int64("identity_id", identityID),
	)
	s.publish(ctx, events.TypeBookingCancelled, cancelled)
	return nil
}

// publish never fails the caller; the booking is already committed.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := events.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		IdentityID: booking.IdentityID,
		FlightID:   booking.FlightID,
		Seat:       booking.Seat.String(),
		Status:     string(booking.Status),
		OccurredAt: s.now().UTC(),
	}
	if s.identities != nil {
		if identity, err := s.identities.GetByID(ctx, booking.IdentityID); err == nil {
			event.Email = identity.Email
		}
	}
	if err := s.producer.Publish(ctx, s.topic, event.Key(), event); err != nil {
		s.logger.WarnContext(ctx, "publish booking event failed",
			slog.String("type", eventType),
			slog.Int64("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
