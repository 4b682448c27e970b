package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/airtickets/internal/apierror"
	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testIdentityID = int64(3)

// newTestRouter mounts the handlers the way bootstrap does. When
// authenticated is set every request carries testIdentityID.
func newTestRouter(authenticated bool, register func(public, protected *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if authenticated {
		r.Use(func(c *gin.Context) {
			ctx := auth.WithIdentity(c.Request.Context(), auth.Identity{ID: testIdentityID, Email: "alice@example.com"})
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
	apiGroup := r.Group("/api")
	register(apiGroup, apiGroup)
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierror.APIError {
	t.Helper()
	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
