package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `b.id, b.identity_id, b.flight_id, b.seat_code, b.status, b.created_at, b.cancelled_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Create relies on the partial unique index bookings_active_seat_uq
// (flight_id, seat_code) WHERE status = 'ACTIVE'.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var flightID int64
	if err := tx.QueryRow(ctx, `SELECT id FROM flights WHERE id=$1 FOR SHARE`, booking.FlightID).Scan(&flightID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("flight %d: %w", booking.FlightID, domain.ErrNotFound)
		}
		return err
	}

	booking.Status = domain.BookingStatusActive
	err = tx.QueryRow(ctx, `INSERT INTO bookings (identity_id, flight_id, seat_code, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, booking.IdentityID, booking.FlightID, booking.Seat.String(), booking.Status).
		Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("flight %d seat %s: %w", booking.FlightID, booking.Seat, domain.ErrSeatConflict)
		case isForeignKeyViolation(err):
			return fmt.Errorf("booking references: %w", domain.ErrNotFound)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) ListActiveByIdentity(ctx context.Context, identityID int64, departingAfter time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+`, `+flightColumns+`
		FROM bookings b JOIN flights f ON f.id = b.flight_id
		WHERE b.identity_id=$1 AND b.status=$2 AND f.departure_time >= $3
		ORDER BY b.id`, identityID, domain.BookingStatusActive, departingAfter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var (
			b    domain.Booking
			f    domain.Flight
			seat string
		)
		dest := append([]any{&b.ID, &b.IdentityID, &b.FlightID, &seat, &b.Status, &b.CreatedAt, &b.CancelledAt}, flightDest(&f)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if b.Seat, err = domain.ParseSeatCode(seat); err != nil {
			return nil, fmt.Errorf("booking %d: stored seat: %w", b.ID, err)
		}
		b.Flight = &f
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ActiveSeats(ctx context.Context, flightID int64, departingAfter time.Time) ([]domain.SeatCode, error) {
	rows, err := r.db.Query(ctx, `SELECT b.seat_code
		FROM bookings b JOIN flights f ON f.id = b.flight_id
		WHERE b.flight_id=$1 AND b.status=$2 AND f.departure_time >= $3`, flightID, domain.BookingStatusActive, departingAfter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.SeatCode, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		seat, err := domain.ParseSeatCode(raw)
		if err != nil {
			return nil, fmt.Errorf("flight %d: stored seat: %w", flightID, err)
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func (r *PGBookingRepository) Cancel(ctx context.Context, identityID, bookingID int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings b SET status=$1, cancelled_at=now()
		WHERE b.id=$2 AND b.identity_id=$3 AND b.status=$4
		RETURNING `+bookingColumns, domain.BookingStatusCancelled, bookingID, identityID, domain.BookingStatusActive)

	var (
		b    domain.Booking
		seat string
	)
	if err := row.Scan(&b.ID, &b.IdentityID, &b.FlightID, &seat, &b.Status, &b.CreatedAt, &b.CancelledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	seatCode, err := domain.ParseSeatCode(seat)
	if err != nil {
		return nil, fmt.Errorf("booking %d: stored seat: %w", b.ID, err)
	}
	b.Seat = seatCode
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
