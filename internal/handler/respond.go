package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/stayora/hotel-booking-backend/internal/authz"
	"github.com/stayora/hotel-booking-backend/internal/engine"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/repository"
	"github.com/stayora/hotel-booking-backend/internal/status"
)

// envelope is the uniform response body. data is omitted when nil so
// error responses stay two-field.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondOK(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, envelope{Success: true, Message: message, Data: data})
}

func respondFail(c echo.Context, code int, message string) error {
	return c.JSON(code, envelope{Success: false, Message: message})
}

// respondErr maps an internal error onto the public status code and
// message. Ownership denials collapse to 404 regardless of whether the
// row was missing or owned by someone else; the distinction stays in
// the server log only.
func respondErr(c echo.Context, err error) error {
	var denial *authz.Denial
	if errors.As(err, &denial) {
		log.Debug().Str("reason", denial.Reason.String()).Msg("access denied")
		return respondFail(c, http.StatusNotFound, "resource not found")
	}

	switch {
	case errors.Is(err, model.ErrInvalidTransition):
		return respondFail(c, http.StatusBadRequest, "invalid status transition")
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrHotelNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrReviewNotFound):
		return respondFail(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, repository.ErrConflict):
		return respondFail(c, http.StatusBadRequest, "resource is still referenced")
	case errors.Is(err, repository.ErrEmailExists):
		return respondFail(c, http.StatusConflict, "email already registered")
	case errors.Is(err, engine.ErrStateNotPersisted):
		log.Error().Err(err).Msg("write did not settle")
		return respondFail(c, http.StatusInternalServerError, "state change could not be verified")
	case errors.Is(err, status.ErrInvalidRepresentation):
		log.Error().Err(err).Msg("corrupt status value in storage")
		return respondFail(c, http.StatusInternalServerError, "internal error")
	}

	var stepErr *engine.StepError
	if errors.As(err, &stepErr) {
		if stepErr.IsConflict() {
			return respondFail(c, http.StatusBadRequest, "resource is still referenced")
		}
		log.Error().Err(err).Str("plan", stepErr.Plan).Str("step", stepErr.Step).Msg("plan rolled back")
		return respondFail(c, http.StatusInternalServerError, "operation failed")
	}

	log.Error().Err(err).Msg("unhandled request error")
	return respondFail(c, http.StatusInternalServerError, "internal error")
}
