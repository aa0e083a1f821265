package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/voluntra/signup-service/internal/dto"
	"github.com/voluntra/signup-service/internal/middleware"
	"github.com/voluntra/signup-service/internal/service"
)

type AttendanceHandler struct {
	svc service.AttendanceService
}

func NewAttendanceHandler(svc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

func (h *AttendanceHandler) RegisterRoutes(e *echo.Echo) {
	scans := e.Group("/api/v1/scans")
	scans.POST("/entry", h.EntryScan)
	scans.POST("/exit", h.ExitScan)

	regs := e.Group("/api/v1/registrations/:id")
	regs.POST("/check-in", h.CheckIn)
	regs.POST("/check-out", h.CheckOut)
	regs.PUT("/attendance", h.SetAttendance)
	regs.PATCH("/times", h.EditTimes)
	regs.GET("/exit-credential", h.ExitCredential)
}

func (h *AttendanceHandler) EntryScan(c echo.Context) error {
	var req dto.EntryScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RegistrationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "registration_id is required")
	}

	reg, exit, err := h.svc.EntryScan(c.Request().Context(), req.RegistrationID, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	resp := map[string]any{"registration": dto.ToRegistrationResponse(reg)}
	if exit != nil {
		resp["exit_credential"] = dto.ToCredentialResponse(exit)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) ExitScan(c echo.Context) error {
	var req dto.ExitScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ExitToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "exit_token is required")
	}

	reg, err := h.svc.ExitScan(c.Request().Context(), req.ExitToken, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	reg, err := h.svc.CheckIn(c.Request().Context(), c.Param("id"), service.SourceManual, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	reg, err := h.svc.CheckOut(c.Request().Context(), c.Param("id"), service.SourceManual, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

func (h *AttendanceHandler) SetAttendance(c echo.Context) error {
	var req dto.SetAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.HasAttended == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "has_attended is required")
	}

	reg, err := h.svc.SetHasAttended(c.Request().Context(), c.Param("id"), *req.HasAttended, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

func (h *AttendanceHandler) EditTimes(c echo.Context) error {
	var req dto.EditTimesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.InTime == nil && req.OutTime == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "in_time or out_time is required")
	}

	reg, err := h.svc.EditTimes(c.Request().Context(), c.Param("id"), req.InTime, req.OutTime, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

func (h *AttendanceHandler) ExitCredential(c echo.Context) error {
	cred, err := h.svc.ExitCredential(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToCredentialResponse(cred))
}
