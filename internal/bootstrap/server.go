package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Domenick1991/airtickets/api"
	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/Domenick1991/airtickets/internal/metrics"
	"github.com/Domenick1991/airtickets/internal/middleware"
	"github.com/Domenick1991/airtickets/internal/service/account"
	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	shutdownTimeout = 5 * time.Second
	openAPIFile     = "openapi.json"
	openAPIRoute    = "/docs/openapi.json"
)

type Services struct {
	Accounts account.AccountUseCase
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Tokens   auth.TokenVerifier
}

type RouterDeps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	// Health reports whether backing stores answer. Nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter builds the gin engine. Register and login sit outside the
// identity check; everything else under /api requires a verified token.
func NewRouter(cfg *config.Config, svc Services, deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.HTTP.CORSOrigin))
	r.Use(middleware.RequestLogger(logger, optionalRecorder(deps.Metrics)))
	r.Use(middleware.Authenticate(svc.Tokens, optionalFailureRecorder(deps.Metrics)))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware())
	}

	r.GET("/healthz", healthHandler(deps.Health))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}
	if cfg.HTTP.SwaggerDir != "" {
		specPath := filepath.Join(cfg.HTTP.SwaggerDir, openAPIFile)
		if _, err := os.Stat(specPath); err != nil {
			logger.Warn("swagger disabled", slog.String("path", specPath), slog.String("error", err.Error()))
		} else {
			r.StaticFile(openAPIRoute, specPath)
			r.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIRoute))))
		}
	}

	apiGroup := r.Group("/api")
	authHandler := api.NewAuthHandler(svc.Accounts)
	authHandler.Register(apiGroup.Group("/auth"))

	protected := apiGroup.Group("", middleware.RequireIdentity())
	authHandler.RegisterProfile(protected)
	api.NewFlightHandler(svc.Flights).Register(protected.Group("/flights"))
	api.NewBookingHandler(svc.Bookings).Register(protected.Group("/bookings"))

	return r
}

// Run serves handler on cfg.HTTP.Address until ctx is canceled or the server
// fails, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// The middleware treat a nil interface as "no metrics"; a nil *Collector
// must not leak through as a non-nil interface.
func optionalRecorder(c *metrics.Collector) middleware.HTTPRecorder {
	if c == nil {
		return nil
	}
	return c
}

func optionalFailureRecorder(c *metrics.Collector) middleware.AuthFailureRecorder {
	if c == nil {
		return nil
	}
	return c
}
