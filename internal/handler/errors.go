package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/voluntra/signup-service/internal/service"
)

// toHTTPError maps service sentinels onto status codes so every handler
// renders the same taxonomy.
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrNotRegistered),
		errors.Is(err, service.ErrSlotNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrNoSeats),
		errors.Is(err, service.ErrCategoryFull),
		errors.Is(err, service.ErrNotCheckedIn),
		errors.Is(err, service.ErrNotCheckedOut):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrBanned),
		errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredential):
		return echo.NewHTTPError(http.StatusGone, err.Error())
	case errors.Is(err, service.ErrSlotRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
