// Package apierror maps domain errors to stable HTTP responses.
package apierror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeValidation         = "VALIDATION_ERROR"
	CodeSeatConflict       = "SEAT_CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// APIError is the body of every error response. Category tells the client
// whether to re-authenticate, retry or give up.
type APIError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// FromError classifies err. Unknown errors become a generic 500 so internal
// details never leak to the client.
func FromError(err error) (int, *APIError) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, &APIError{
			Code:     CodeUnauthenticated,
			Message:  "authentication required",
			Category: "auth",
			Action:   "log in again to obtain a new token",
		}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, &APIError{
			Code:     CodeInvalidCredentials,
			Message:  "email or password is incorrect",
			Category: "auth",
			Action:   "check the credentials",
		}
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return http.StatusConflict, &APIError{
			Code:     CodeDuplicateIdentity,
			Message:  "an account with this email already exists",
			Category: "auth",
			Action:   "log in instead of registering",
		}
	case errors.Is(err, domain.ErrSeatConflict):
		return http.StatusConflict, &APIError{
			Code:     CodeSeatConflict,
			Message:  "the seat has just been taken",
			Category: "booking",
			Action:   "reload available seats and pick another one",
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, &APIError{
			Code:     CodeNotFound,
			Message:  err.Error(),
			Category: "booking",
			Action:   "check the identifier",
		}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, &APIError{
			Code:     CodeValidation,
			Message:  err.Error(),
			Category: "validation",
			Action:   "fix the request and send it again",
		}
	default:
		return http.StatusInternalServerError, &APIError{
			Code:     CodeInternal,
			Message:  "internal error",
			Category: "system",
			Action:   "try again later",
		}
	}
}

// Abort writes the mapped error and stops the gin handler chain.
func Abort(c *gin.Context, err error) {
	status, body := FromError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// AbortWith writes a prepared body, used for errors that have no domain
// counterpart such as rate limiting.
func AbortWith(c *gin.Context, status int, body *APIError) {
	c.AbortWithStatusJSON(status, body)
}
