package domain

import "time"

const (
	DefaultRows        = 20
	DefaultSeatsPerRow = 6
)

// SeatLayout is the rows x seats-per-row grid of a cabin. Seats in a row are
// lettered from 'A'.
type SeatLayout struct {
	Rows        int `json:"rows"`
	SeatsPerRow int `json:"seats_per_row"`
}

func DefaultLayout() SeatLayout {
	return SeatLayout{Rows: DefaultRows, SeatsPerRow: DefaultSeatsPerRow}
}

type Flight struct {
	ID            int64      `json:"id"`
	FlightNumber  string     `json:"flight_number"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   time.Time  `json:"arrival_time"`
	AircraftModel string     `json:"aircraft_model"`
	PriceCents    int64      `json:"price_cents"`
	Layout        SeatLayout `json:"layout"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Departed reports whether the flight left before now.
func (f Flight) Departed(now time.Time) bool {
	return f.DepartureTime.Before(now)
}
