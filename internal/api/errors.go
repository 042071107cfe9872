package api

import (
	"alcyxob/fitcoach/internal/access"
	"alcyxob/fitcoach/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errorStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusUnauthorized, []error{
		access.ErrUnauthenticated, service.ErrAuthenticationFailed,
		service.ErrInvalidToken, service.ErrTokenExpired,
	}},
	{http.StatusForbidden, []error{
		access.ErrForbidden, service.ErrAccountDisabled, service.ErrClientAccessDenied,
		service.ErrExerciseAccessDenied, service.ErrWorkoutNotOwner, service.ErrCannotChangeSelf,
	}},
	{http.StatusNotFound, []error{
		service.ErrUserNotFound, service.ErrTrainerNotFound, service.ErrClientNotFound,
		service.ErrMappingNotFound, service.ErrExerciseNotFound, service.ErrWorkoutNotFound,
		service.ErrClientProfileNotFound, service.ErrTrainerProfileNotFound, service.ErrNotificationNotFound,
		service.ErrChallengeNotFound,
	}},
	{http.StatusConflict, []error{
		service.ErrUserAlreadyExists, service.ErrMappingExists,
		service.ErrExerciseInUse, service.ErrWorkoutCompleted, service.ErrAlreadyJoined,
	}},
	{http.StatusBadRequest, []error{
		service.ErrValidationFailed, service.ErrMappingInactive, service.ErrInvalidUserStatus,
		service.ErrWorkoutClosed, service.ErrWorkoutAlreadyStarted, service.ErrChallengeNotOpen,
	}},
	{http.StatusServiceUnavailable, []error{service.ErrDataUnavailable}},
}

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	for _, group := range errorStatus {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError aborts with the mapped status. Server-side failures keep
// their detail out of the body; it is attached to the context for the
// access log instead.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	message := err.Error()
	switch {
	case errors.Is(err, access.ErrForbidden):
		message = "not permitted"
	case status == http.StatusServiceUnavailable:
		message = "service temporarily unavailable"
	case status == http.StatusInternalServerError:
		message = "an unexpected error occurred"
	}
	abortWithError(c, status, message)
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
