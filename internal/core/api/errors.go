package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mobilyasoft/configurator/internal/core/session"
	"github.com/mobilyasoft/configurator/internal/types"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP statuses.
// Validation and rule rejections map to 422, lifecycle conflicts to 409,
// upstream pricing failures to 502.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrUnknownSpecType),
		errors.Is(err, types.ErrUnknownOption):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrRuleViolation),
		errors.Is(err, types.ErrPendingMandatoryFields),
		errors.Is(err, types.ErrMissingRequiredSelection),
		errors.Is(err, types.ErrSubmissionRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrSessionSubmitted),
		errors.Is(err, types.ErrSessionNotSubmitted),
		errors.Is(err, types.ErrSubmissionInFlight),
		errors.Is(err, session.ErrStalePreview):
		status = http.StatusConflict
	case errors.Is(err, types.ErrTransientNetwork):
		status = http.StatusBadGateway
	}

	return c.JSON(status, errorResponse{Error: err.Error()})
}
