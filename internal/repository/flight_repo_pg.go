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

const flightColumns = `f.id, f.flight_number, f.origin, f.destination, f.departure_time, f.arrival_time, f.aircraft_model, f.price_cents, f.seat_rows, f.seats_per_row, f.created_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) ListDepartingAfter(ctx context.Context, t time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.departure_time >= $1 ORDER BY f.departure_time, f.id`, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(flightDest(&f)...); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights f WHERE f.id=$1`, id)
	var f domain.Flight
	if err := row.Scan(flightDest(&f)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("flight %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &f, nil
}

func flightDest(f *domain.Flight) []any {
	return []any{
		&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime,
		&f.AircraftModel, &f.PriceCents, &f.Layout.Rows, &f.Layout.SeatsPerRow, &f.CreatedAt,
	}
}

var _ FlightRepository = (*PGFlightRepository)(nil)
