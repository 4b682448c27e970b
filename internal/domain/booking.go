package domain

import "time"

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID          int64
	IdentityID  int64
	FlightID    int64
	Seat        SeatCode
	Status      BookingStatus
	CreatedAt   time.Time
	CancelledAt *time.Time

	// Flight is filled by listing queries so callers can render the itinerary
	// without a second lookup.
	Flight *Flight
}
