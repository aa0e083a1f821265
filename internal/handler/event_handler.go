package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/voluntra/signup-service/internal/dto"
	"github.com/voluntra/signup-service/internal/middleware"
	"github.com/voluntra/signup-service/internal/models"
	"github.com/voluntra/signup-service/internal/service"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(e *echo.Echo) {
	events := e.Group("/api/v1/events")
	events.POST("", h.CreateEvent)
	events.GET("/:id/status", h.GetEventStatus)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	creatorID := middleware.UserID(c)
	if creatorID == "" {
		return echo.NewHTTPError(http.StatusForbidden, "missing user identity")
	}

	mode := models.CapacityMode(req.CapacityMode)
	if mode == "" {
		mode = models.CapacityUnlimited
	}
	if mode != models.CapacityUnlimited && mode != models.CapacityFixed {
		return echo.NewHTTPError(http.StatusBadRequest, "capacity_mode must be unlimited or fixed")
	}

	event := &models.Event{
		Name:         req.Name,
		CreatorID:    creatorID,
		CapacityMode: mode,
		MaxSeats:     req.MaxSeats,
	}
	for _, s := range req.TimeSlots {
		slot := models.TimeSlot{Name: s.Name, StartTime: s.StartTime, EndTime: s.EndTime}
		for _, cat := range s.Categories {
			slot.Categories = append(slot.Categories, models.SlotCategory{
				Name:         cat.Name,
				MaxOccupants: cat.MaxOccupants,
			})
		}
		event.TimeSlots = append(event.TimeSlots, slot)
	}

	if err := h.svc.CreateEvent(c.Request().Context(), event); err != nil {
		if isValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToEventStatusResponse(event))
}

func (h *EventHandler) GetEventStatus(c echo.Context) error {
	event, err := h.svc.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventStatusResponse(event))
}

func isValidationError(err error) bool {
	return errors.Is(err, models.ErrInvalidMaxSeats) ||
		errors.Is(err, models.ErrInvalidTimeRange) ||
		errors.Is(err, models.ErrOverlappingTimeSlots) ||
		errors.Is(err, models.ErrDuplicateCategory) ||
		errors.Is(err, models.ErrInvalidClockTime) ||
		errors.Is(err, models.ErrInvalidMaxOccupants)
}
