package httpapi

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-statuspage/internal/statuspage"
	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, statuspage.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, statuspage.ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, statuspage.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, statuspage.ErrInviteExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error body. Internal errors are logged and
// replaced with a generic message.
func (s *Server) fail(c router.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", logger.F("error", err))
		msg = "internal error"
	}
	return c.JSON(code, map[string]any{"error": msg})
}

func badRequest(c router.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]any{"error": msg})
}
