package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
)

// MemoryStore keeps everything in process. A single mutex serialises writes,
// which gives Create the same one-winner guarantee as the Postgres index.
type MemoryStore struct {
	mu sync.RWMutex

	now func() time.Time

	identities     map[int64]domain.Identity
	identityEmails map[string]int64
	flights        map[int64]domain.Flight
	bookings       map[int64]domain.Booking
	activeSeats    map[seatKey]int64

	nextIdentityID int64
	nextFlightID   int64
	nextBookingID  int64
}

type seatKey struct {
	flightID int64
	seat     domain.SeatCode
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:            time.Now,
		identities:     make(map[int64]domain.Identity),
		identityEmails: make(map[string]int64),
		flights:        make(map[int64]domain.Flight),
		bookings:       make(map[int64]domain.Booking),
		activeSeats:    make(map[seatKey]int64),
	}
}

func (s *MemoryStore) Identities() IdentityRepository { return &memoryIdentities{s} }
func (s *MemoryStore) Flights() FlightRepository       { return &memoryFlights{s} }
func (s *MemoryStore) Bookings() BookingRepository     { return &memoryBookings{s} }

// AddFlight inserts a flight and returns it with ID and CreatedAt set. The
// layout is stored as given, so a zero layout is a flight with no seats.
func (s *MemoryStore) AddFlight(f domain.Flight) domain.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextFlightID++
	f.ID = s.nextFlightID
	f.CreatedAt = s.now()
	s.flights[f.ID] = f
	return f
}

// SeedDefaultFlights adds the same demo schedule the Postgres migration seeds.
func (s *MemoryStore) SeedDefaultFlights(now time.Time) {
	base := now.UTC().Truncate(time.Hour)
	for _, f := range DefaultFlights(base) {
		s.AddFlight(f)
	}
}

// DefaultFlights returns a small upcoming schedule relative to base.
func DefaultFlights(base time.Time) []domain.Flight {
	day := 24 * time.Hour
	flights := []domain.Flight{
		{FlightNumber: "SU1402", Origin: "SVO", Destination: "LED", DepartureTime: base.Add(day + 8*time.Hour), ArrivalTime: base.Add(day + 9*time.Hour + 30*time.Minute), AircraftModel: "Airbus A320", PriceCents: 549000},
		{FlightNumber: "SU1120", Origin: "SVO", Destination: "KZN", DepartureTime: base.Add(2*day + 11*time.Hour), ArrivalTime: base.Add(2*day + 12*time.Hour + 40*time.Minute), AircraftModel: "Sukhoi Superjet 100", PriceCents: 429000},
		{FlightNumber: "DP405", Origin: "VKO", Destination: "AER", DepartureTime: base.Add(3*day + 6*time.Hour), ArrivalTime: base.Add(3*day + 8*time.Hour + 20*time.Minute), AircraftModel: "Boeing 737-800", PriceCents: 689000},
		{FlightNumber: "S72511", Origin: "DME", Destination: "OVB", DepartureTime: base.Add(5*day + 22*time.Hour), ArrivalTime: base.Add(6*day + 2*time.Hour), AircraftModel: "Airbus A321neo", PriceCents: 1129000},
	}
	for i := range flights {
		flights[i].Layout = domain.DefaultLayout()
	}
	return flights
}

type memoryIdentities struct{ s *MemoryStore }

func (r *memoryIdentities) Create(_ context.Context, identity *domain.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	identity.Email = normalizeEmail(identity.Email)
	if _, ok := r.s.identityEmails[identity.Email]; ok {
		return domain.ErrDuplicateIdentity
	}
	r.s.nextIdentityID++
	identity.ID = r.s.nextIdentityID
	identity.CreatedAt = r.s.now()
	r.s.identities[identity.ID] = *identity
	r.s.identityEmails[identity.Email] = identity.ID
	return nil
}

func (r *memoryIdentities) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.identityEmails[normalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("identity: %w", domain.ErrNotFound)
	}
	identity := r.s.identities[id]
	return &identity, nil
}

func (r *memoryIdentities) GetByID(_ context.Context, id int64) (*domain.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	identity, ok := r.s.identities[id]
	if !ok {
		return nil, fmt.Errorf("identity: %w", domain.ErrNotFound)
	}
	return &identity, nil
}

type memoryFlights struct{ s *MemoryStore }

func (r *memoryFlights) ListDepartingAfter(_ context.Context, t time.Time) ([]domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	flights := make([]domain.Flight, 0, len(r.s.flights))
	for _, f := range r.s.flights {
		if !f.DepartureTime.Before(t) {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].ID < flights[j].ID
		}
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights, nil
}

func (r *memoryFlights) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.flights[id]
	if !ok {
		return nil, fmt.Errorf("flight %d: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

type memoryBookings struct{ s *MemoryStore }

func (r *memoryBookings) Create(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.flights[booking.FlightID]; !ok {
		return fmt.Errorf("flight %d: %w", booking.FlightID, domain.ErrNotFound)
	}
	if _, ok := r.s.identities[booking.IdentityID]; !ok {
		return fmt.Errorf("booking references: %w", domain.ErrNotFound)
	}
	key := seatKey{flightID: booking.FlightID, seat: booking.Seat}
	if _, taken := r.s.activeSeats[key]; taken {
		return fmt.Errorf("flight %d seat %s: %w", booking.FlightID, booking.Seat, domain.ErrSeatConflict)
	}

	r.s.nextBookingID++
	booking.ID = r.s.nextBookingID
	booking.Status = domain.BookingStatusActive
	booking.CreatedAt = r.s.now()
	booking.CancelledAt = nil
	booking.Flight = nil
	r.s.bookings[booking.ID] = *booking
	r.s.activeSeats[key] = booking.ID
	return nil
}

func (r *memoryBookings) ListActiveByIdentity(_ context.Context, identityID int64, departingAfter time.Time) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range r.s.bookings {
		if b.IdentityID != identityID || b.Status != domain.BookingStatusActive {
			continue
		}
		f := r.s.flights[b.FlightID]
		if f.DepartureTime.Before(departingAfter) {
			continue
		}
		b.Flight = &f
		bookings = append(bookings, b)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (r *memoryBookings) ActiveSeats(_ context.Context, flightID int64, departingAfter time.Time) ([]domain.SeatCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seats := make([]domain.SeatCode, 0)
	f, ok := r.s.flights[flightID]
	if !ok || f.DepartureTime.Before(departingAfter) {
		return seats, nil
	}
	for key := range r.s.activeSeats {
		if key.flightID == flightID {
			seats = append(seats, key.seat)
		}
	}
	return seats, nil
}

func (r *memoryBookings) Cancel(_ context.Context, identityID, bookingID int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[bookingID]
	if !ok || b.IdentityID != identityID || b.Status != domain.BookingStatusActive {
		return nil, nil
	}
	cancelledAt := r.s.now()
	b.Status = domain.BookingStatusCancelled
	b.CancelledAt = &cancelledAt
	r.s.bookings[bookingID] = b
	delete(r.s.activeSeats, seatKey{flightID: b.FlightID, seat: b.Seat})
	return &b, nil
}

var (
	_ IdentityRepository = (*memoryIdentities)(nil)
	_ FlightRepository   = (*memoryFlights)(nil)
	_ BookingRepository  = (*memoryBookings)(nil)
)
