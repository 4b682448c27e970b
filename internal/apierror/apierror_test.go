package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	testCases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("verify: %w", domain.ErrUnauthenticated), http.StatusUnauthorized, CodeUnauthenticated},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{domain.ErrDuplicateIdentity, http.StatusConflict, CodeDuplicateIdentity},
		{fmt.Errorf("%w: seat 9Z", domain.ErrValidation), http.StatusBadRequest, CodeValidation},
		{fmt.Errorf("create: %w", domain.ErrSeatConflict), http.StatusConflict, CodeSeatConflict},
		{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError, CodeInternal},
	}

	codes := map[string]bool{}
	for _, tc := range testCases {
		status, body := FromError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, body.Code)
		codes[body.Code] = true
	}
	assert.Len(t, codes, len(testCases))
}

func TestFromError_HidesInternalDetails(t *testing.T) {
	_, body := FromError(errors.New("pq: password authentication failed"))
	assert.NotContains(t, body.Message, "password")
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Abort(c, domain.ErrSeatConflict)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusConflict, w.Code)

	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeSeatConflict, body.Code)
	assert.Equal(t, "booking", body.Category)
}
