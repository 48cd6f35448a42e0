package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if code, ok := domainStatus(err); ok {
		if errors.Is(err, domain.ErrUnauthenticated) {
			// Token parse details stay in the logs.
			log.Debug().Err(err).Str("path", c.Path()).Msg("credentials rejected")
			return code, domain.ErrUnauthenticated.Error()
		}
		return code, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// domainStatus maps domain errors to status codes. Order matters: refinements
// are checked before the kinds they wrap.
func domainStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrRefreshTokenRejected):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrInsufficientPrivilege):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInactiveAccount),
		errors.Is(err, domain.ErrSelfActionForbidden),
		errors.Is(err, domain.ErrNotRefreshToken),
		errors.Is(err, domain.ErrIncorrectPassword),
		errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, true
	}
	return 0, false
}
