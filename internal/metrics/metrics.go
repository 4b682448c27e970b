// Package metrics exposes prometheus counters for the booking API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	bookingsCreated   prometheus.Counter
	bookingConflicts  prometheus.Counter
	bookingsCancelled prometheus.Counter
	authFailures      prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airtickets_bookings_created_total",
			Help: "Bookings committed.",
		}),
		bookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airtickets_booking_conflicts_total",
			Help: "Booking attempts that lost a seat to a concurrent booking.",
		}),
		bookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airtickets_bookings_cancelled_total",
			Help: "Bookings moved to CANCELLED.",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airtickets_auth_failures_total",
			Help: "Requests rejected because of an invalid token.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airtickets_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "airtickets_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.bookingsCreated,
		c.bookingConflicts,
		c.bookingsCancelled,
		c.authFailures,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) RecordBookingCreated() {
	c.bookingsCreated.Inc()
}

func (c *Collector) RecordBookingConflict() {
	c.bookingConflicts.Inc()
}

func (c *Collector) RecordBookingCancelled() {
	c.bookingsCancelled.Inc()
}

func (c *Collector) RecordAuthFailure() {
	c.authFailures.Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry for prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
