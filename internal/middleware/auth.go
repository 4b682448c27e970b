// Package middleware holds the gin middleware of the HTTP API.
package middleware

import (
	"strings"

	"github.com/Domenick1991/airtickets/internal/apierror"
	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// AuthFailureRecorder counts rejected tokens.
type AuthFailureRecorder interface {
	RecordAuthFailure()
}

// Authenticate is the authorization gate. A request without a bearer
// credential passes through unverified and the route decides whether it
// needs an identity. A present credential is verified exactly once: on
// failure the request is rejected with 401, on success the identity is bound
// to the request context for everything downstream.
func Authenticate(verifier auth.TokenVerifier, failures AuthFailureRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.Next()
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		identity, err := verifier.Verify(raw)
		if err != nil {
			if failures != nil {
				failures.RecordAuthFailure()
			}
			apierror.Abort(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireIdentity rejects requests that reached it unverified.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.IdentityFromContext(c.Request.Context()); !ok {
			apierror.Abort(c, domain.ErrUnauthenticated)
			return
		}
		c.Next()
	}
}
