package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/voluntra/signup-service/internal/dto"
	"github.com/voluntra/signup-service/internal/middleware"
	"github.com/voluntra/signup-service/internal/models"
	"github.com/voluntra/signup-service/internal/service"
)

type RegistrationHandler struct {
	svc service.RegistrationService
}

func NewRegistrationHandler(svc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) RegisterRoutes(e *echo.Echo) {
	events := e.Group("/api/v1/events/:id")
	events.POST("/registrations", h.Register)
	events.GET("/registrations/:volunteerID", h.CheckRegistration)
	events.DELETE("/registrations/:volunteerID", h.Withdraw)
	events.POST("/bans/:volunteerID", h.Ban)
	events.DELETE("/bans/:volunteerID", h.Unban)
	events.POST("/removals/:volunteerID", h.Remove)
}

func (h *RegistrationHandler) Register(c echo.Context) error {
	eventID := c.Param("id")

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.VolunteerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "volunteer_id is required")
	}

	var sel *service.SlotSelection
	if req.SlotID != "" || req.CategoryID != "" {
		if req.SlotID == "" || req.CategoryID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "slot_id and category_id must be given together")
		}
		sel = &service.SlotSelection{SlotID: req.SlotID, CategoryID: req.CategoryID}
	}

	members := make([]models.GroupMember, 0, len(req.GroupMembers))
	for _, m := range req.GroupMembers {
		members = append(members, models.GroupMember{Name: m.Name, Phone: m.Phone, Email: m.Email})
	}

	reg, entry, err := h.svc.Register(c.Request().Context(), eventID, req.VolunteerID, members, sel)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.RegisterResponse{
		Registration:    dto.ToRegistrationResponse(reg),
		EntryCredential: dto.ToCredentialResponse(entry),
	})
}

func (h *RegistrationHandler) CheckRegistration(c echo.Context) error {
	registered, err := h.svc.IsRegistered(c.Request().Context(), c.Param("id"), c.Param("volunteerID"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.CheckRegistrationResponse{Registered: registered})
}

func (h *RegistrationHandler) Withdraw(c echo.Context) error {
	err := h.svc.Withdraw(c.Request().Context(), c.Param("id"), c.Param("volunteerID"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RegistrationHandler) Ban(c echo.Context) error {
	err := h.svc.BanVolunteer(c.Request().Context(), c.Param("id"), c.Param("volunteerID"), middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RegistrationHandler) Unban(c echo.Context) error {
	err := h.svc.UnbanVolunteer(c.Request().Context(), c.Param("id"), c.Param("volunteerID"), middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RegistrationHandler) Remove(c echo.Context) error {
	err := h.svc.RemoveVolunteer(c.Request().Context(), c.Param("id"), c.Param("volunteerID"), middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
