// Package api holds the gin handlers of the public HTTP API.
package api

import (
	"fmt"
	"strconv"

	"github.com/Domenick1991/airtickets/internal/apierror"
	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/gin-gonic/gin"
)

// currentIdentity returns the identity bound by the authorization gate. It
// aborts with 401 when the route was reached unverified.
func currentIdentity(c *gin.Context) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(c.Request.Context())
	if !ok {
		apierror.Abort(c, domain.ErrUnauthenticated)
		return auth.Identity{}, false
	}
	return identity, true
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		apierror.Abort(c, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierror.Abort(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return false
	}
	return true
}
