// Package repository persists identities, flights and bookings.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

type IdentityRepository interface {
	// Create stores identity and fills its ID. A taken email yields
	// domain.ErrDuplicateIdentity.
	Create(ctx context.Context, identity *domain.Identity) error
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	GetByID(ctx context.Context, id int64) (*domain.Identity, error)
}

type FlightRepository interface {
	ListDepartingAfter(ctx context.Context, t time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type BookingRepository interface {
	// Create stores an ACTIVE booking. The store's uniqueness constraint on
	// (flight, seat) among active rows decides concurrent attempts; the
	// loser gets domain.ErrSeatConflict.
	Create(ctx context.Context, booking *domain.Booking) error
	ListActiveByIdentity(ctx context.Context, identityID int64, departingAfter time.Time) ([]domain.Booking, error)
	ActiveSeats(ctx context.Context, flightID int64, departingAfter time.Time) ([]domain.SeatCode, error)
	// Cancel moves the caller's active booking to CANCELLED and returns it.
	// It returns nil, nil when there was nothing to cancel.
	Cancel(ctx context.Context, identityID, bookingID int64) (*domain.Booking, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
