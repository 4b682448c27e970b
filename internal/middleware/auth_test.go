package middleware

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(raw string) (auth.Identity, error) {
	args := m.Called(raw)
	return args.Get(0).(auth.Identity), args.Error(1)
}

type MockFailureRecorder struct {
	mock.Mock
}

func (m *MockFailureRecorder) RecordAuthFailure() {
	m.Called()
}

func newRouter(verifier auth.TokenVerifier, failures AuthFailureRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(verifier, failures))

	r.GET("/public", func(c *gin.Context) {
		identity, ok := auth.IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"verified": ok, "id": identity.ID})
	})
	protected := r.Group("/", RequireIdentity())
	protected.GET("/private", func(c *gin.Context) {
		identity, _ := auth.IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": identity.ID})
	})
	return r
}

func TestAuthenticate_NoHeaderPassesUnverified(t *testing.T) {
	verifier := &MockVerifier{}
	r := newRouter(verifier, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"verified":false,"id":0}`, w.Body.String())
	verifier.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestAuthenticate_WrongSchemePassesUnverified(t *testing.T) {
	verifier := &MockVerifier{}
	r := newRouter(verifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	verifier.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestAuthenticate_InvalidTokenRejected(t *testing.T) {
	verifier := &MockVerifier{}
	failures := &MockFailureRecorder{}
	verifier.On("Verify", "bad").Return(auth.Identity{}, fmt.Errorf("%w: expired", domain.ErrUnauthenticated)).Once()
	failures.On("RecordAuthFailure").Once()
	r := newRouter(verifier, failures)

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
	verifier.AssertExpectations(t)
	failures.AssertExpectations(t)
}

func TestAuthenticate_ValidTokenBindsIdentityOnce(t *testing.T) {
	verifier := &MockVerifier{}
	verifier.On("Verify", "good").Return(auth.Identity{ID: 9, Email: "a@x.com"}, nil).Once()
	r := newRouter(verifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":9}`, w.Body.String())
	verifier.AssertNumberOfCalls(t, "Verify", 1)
}

func TestRequireIdentity_RejectsUnverified(t *testing.T) {
	r := newRouter(&MockVerifier{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_WithRealTokens(t *testing.T) {
	svc, err := auth.NewTokenService("0123456789abcdef0123456789abcdef", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	token, err := svc.Issue(auth.Identity{ID: 5})
	if err != nil {
		t.Fatal(err)
	}
	r := newRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5}`, w.Body.String())
}

type MockHTTPRecorder struct {
	mock.Mock
}

func (m *MockHTTPRecorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.Called(method, route, status, duration)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	recorder := &MockHTTPRecorder{}
	recorder.On("RecordHTTPRequest", http.MethodGet, "/things/:id", http.StatusNotFound, mock.Anything).Once()

	r := gin.New()
	r.Use(RequestLogger(logger, recorder))
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/things/1", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"msg":"http_request"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	recorder.AssertExpectations(t)
}
