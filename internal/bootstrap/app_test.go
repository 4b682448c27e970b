package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/Domenick1991/airtickets/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.Driver = config.DriverMemory
	cfg.Auth.JWTSecret = "integration-secret-integration-secret"
	cfg.Auth.BcryptCost = 4
	cfg.RateLimit.RequestsPerSecond = 0
	require.NoError(t, cfg.Validate())

	app, err := NewApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestApp_LoginThenBook(t *testing.T) {
	app := newTestApp(t)
	c := &client{t: t, handler: app.Handler}

	w := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"display_name": "Alice", "email": "alice@example.com", "password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "alice@example.com", "password": "another one"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// No token yet.
	w = c.do(http.MethodGet, "/api/flights", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	c.token = decode[map[string]any](t, w)["token"].(string)
	require.NotEmpty(t, c.token)

	w = c.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decode[map[string]any](t, w)["display_name"])

	w = c.do(http.MethodGet, "/api/flights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	flights := decode[[]map[string]any](t, w)
	require.NotEmpty(t, flights)
	flightID := int64(flights[0]["id"].(float64))

	w = c.do(http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = c.do(http.MethodPost, "/api/bookings", map[string]any{"flight_id": flightID, "seat_number": "1A"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bookingID := int64(decode[map[string]any](t, w)["id"].(float64))

	w = c.do(http.MethodPost, "/api/bookings", map[string]any{"flight_id": flightID, "seat_number": "1a"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPost, "/api/bookings", map[string]any{"flight_id": flightID, "seat_number": "99Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodGet, "/api/bookings/available-seats/"+itoa(flightID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	seats := decode[[]string](t, w)
	assert.Len(t, seats, 119)
	assert.Equal(t, "1B", seats[0])

	w = c.do(http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0]["flight"])

	w = c.do(http.MethodDelete, "/api/bookings/"+itoa(bookingID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = c.do(http.MethodDelete, "/api/bookings/"+itoa(bookingID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodGet, "/api/bookings/available-seats/999999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "airtickets_bookings_created_total 1")
	assert.Contains(t, w.Body.String(), "airtickets_booking_conflicts_total 1")
	assert.Contains(t, w.Body.String(), "airtickets_bookings_cancelled_total 1")
}

func TestApp_RegisterShortPasswordThenLogin(t *testing.T) {
	app := newTestApp(t)
	c := &client{t: t, handler: app.Handler}

	w := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"display_name": "alice", "email": "a@x.com", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c.token = decode[map[string]any](t, w)["token"].(string)
	require.NotEmpty(t, c.token)

	w = c.do(http.MethodGet, "/api/flights", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	c.token = ""
	w = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode[map[string]any](t, w)["code"])
}

func TestApp_TamperedTokenRejected(t *testing.T) {
	app := newTestApp(t)

	// A malformed bearer credential is rejected even on public routes.
	c := &client{t: t, handler: app.Handler, token: "not.a.jwt"}
	w := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "x@y.zz", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[map[string]any](t, w)["code"])

	w = c.do(http.MethodGet, "/api/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApp_Healthz(t *testing.T) {
	app := newTestApp(t)
	c := &client{t: t, handler: app.Handler}

	w := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
