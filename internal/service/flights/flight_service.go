package flights

import (
	"context"
	"log/slog"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

type FlightService struct {
	repo   repository.FlightRepository
	cache  FlightCache
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*FlightService)

func WithClock(now func() time.Time) Option {
	return func(s *FlightService) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *FlightService) { s.logger = logger }
}

// NewFlightService accepts a nil cache.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, opts ...Option) *FlightService {
	s := &FlightService{repo: repo, cache: cache, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns flights departing at or after now, earliest first. A cached
// list may be older than now, so it is filtered again before use.
func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	now := s.now()
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "flights cache read failed", slog.String("error", err.Error()))
		} else if cached != nil {
			return upcoming(cached, now), nil
		}
	}

	flights, err := s.repo.ListDepartingAfter(ctx, now)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.logger.WarnContext(ctx, "flights cache write failed", slog.String("error", err.Error()))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func upcoming(flights []domain.Flight, now time.Time) []domain.Flight {
	out := make([]domain.Flight, 0, len(flights))
	for _, f := range flights {
		if !f.Departed(now) {
			out = append(out, f)
		}
	}
	return out
}

var _ FlightUseCase = (*FlightService)(nil)
