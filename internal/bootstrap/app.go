// Package bootstrap assembles the HTTP application from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/Domenick1991/airtickets/internal/cache"
	"github.com/Domenick1991/airtickets/internal/database"
	"github.com/Domenick1991/airtickets/internal/events"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/metrics"
	"github.com/Domenick1991/airtickets/internal/middleware"
	"github.com/Domenick1991/airtickets/internal/rabbitmq"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/service/account"
	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

type App struct {
	Handler http.Handler

	closers []func()
}

type stores struct {
	identities repository.IdentityRepository
	flights    repository.FlightRepository
	bookings   repository.BookingRepository
	health     func(ctx context.Context) error
}

// NewApp connects every backing service named in cfg and returns the ready
// HTTP handler. Close releases what NewApp opened.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{}

	st, err := app.openStores(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("token service: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	bookingOpts := []booking.BookingServiceOption{
		booking.WithIdentities(st.identities),
		booking.WithRecorder(collector),
		booking.WithLogger(logger),
	}
	if publisher := app.openPublisher(ctx, cfg, logger); publisher != nil {
		bookingOpts = append(bookingOpts, booking.WithProducer(publisher, cfg.EventsTopic()))
	}

	svc := Services{
		Accounts: account.NewAccountService(st.identities, tokens,
			account.WithBcryptCost(cfg.Auth.BcryptCost),
			account.WithLogger(logger),
		),
		Flights:  flights.NewFlightService(st.flights, app.openCache(ctx, cfg, logger), flights.WithLogger(logger)),
		Bookings: booking.NewBookingService(st.bookings, st.flights, bookingOpts...),
		Tokens:   tokens,
	}

	deps := RouterDeps{
		Logger:   logger,
		Metrics:  collector,
		Gatherer: registry,
		Health:   st.health,
	}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		app.closers = append(app.closers, limiter.Stop)
		deps.RateLimiter = limiter
	}

	app.Handler = NewRouter(cfg, svc, deps)
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (stores, error) {
	if cfg.Database.Driver == config.DriverMemory {
		store := repository.NewMemoryStore()
		store.SeedDefaultFlights(time.Now())
		logger.Info("using in-memory store")
		return stores{
			identities: store.Identities(),
			flights:    store.Flights(),
			bookings:   store.Bookings(),
		}, nil
	}

	url := cfg.Database.ConnURL()
	if cfg.Database.Migrate {
		if err := database.RunMigrations(url); err != nil {
			return stores{}, err
		}
		logger.Info("database migrations applied")
	}
	pool, err := database.Open(ctx, url)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, pool.Close)

	return stores{
		identities: repository.NewIdentityRepository(pool),
		flights:    repository.NewFlightRepository(pool),
		bookings:   repository.NewBookingRepository(pool),
		health:     pool.Ping,
	}, nil
}

// openCache returns nil when redis is not configured. An unreachable redis is
// logged but kept; the flight service falls back to the store on errors.
func (a *App) openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) flights.FlightCache {
	if cfg.Redis.Addr == "" || cfg.Booking.FlightsCacheTTL == 0 {
		return nil
	}
	c := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	a.closers = append(a.closers, func() { _ = c.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, flights cache degraded", slog.String("addr", cfg.Redis.Addr), slog.String("error", err.Error()))
	}
	return c
}

func (a *App) openPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) events.Publisher {
	switch cfg.Events.Driver {
	case config.EventsKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		a.closers = append(a.closers, func() { _ = producer.Close() })

		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := producer.CheckConnection(checkCtx); err != nil {
			logger.Warn("kafka unreachable, booking events may be lost", slog.String("error", err.Error()))
		}
		return producer
	case config.EventsRabbitMQ:
		return rabbitmq.NewPublisher(cfg.RabbitMQ.URL)
	default:
		return nil
	}
}
