package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/voluntra/signup-service/internal/dto"
	"github.com/voluntra/signup-service/internal/models"
	"github.com/voluntra/signup-service/internal/service"
)

// --- Mock RegistrationService ---

type mockRegistrationService struct {
	registerFn     func(ctx context.Context, eventID, volunteerID string, members []models.GroupMember, sel *service.SlotSelection) (*models.Registration, *models.Credential, error)
	withdrawFn     func(ctx context.Context, eventID, volunteerID string) error
	isRegisteredFn func(ctx context.Context, eventID, volunteerID string) (bool, error)
	removeFn       func(ctx context.Context, eventID, volunteerID, actorID string) error
	banFn          func(ctx context.Context, eventID, volunteerID, actorID string) error
	unbanFn        func(ctx context.Context, eventID, volunteerID, actorID string) error
}

func (m *mockRegistrationService) Register(ctx context.Context, eventID, volunteerID string, members []models.GroupMember, sel *service.SlotSelection) (*models.Registration, *models.Credential, error) {
	return m.registerFn(ctx, eventID, volunteerID, members, sel)
}
func (m *mockRegistrationService) Withdraw(ctx context.Context, eventID, volunteerID string) error {
	return m.withdrawFn(ctx, eventID, volunteerID)
}
func (m *mockRegistrationService) IsRegistered(ctx context.Context, eventID, volunteerID string) (bool, error) {
	return m.isRegisteredFn(ctx, eventID, volunteerID)
}
func (m *mockRegistrationService) RemoveVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error {
	return m.removeFn(ctx, eventID, volunteerID, actorID)
}
func (m *mockRegistrationService) BanVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error {
	return m.banFn(ctx, eventID, volunteerID, actorID)
}
func (m *mockRegistrationService) UnbanVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error {
	return m.unbanFn(ctx, eventID, volunteerID, actorID)
}

func newContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// --- Tests ---

func TestRegister_Handler_Success(t *testing.T) {
	svc := &mockRegistrationService{
		registerFn: func(ctx context.Context, eventID, volunteerID string, members []models.GroupMember, sel *service.SlotSelection) (*models.Registration, *models.Credential, error) {
			return &models.Registration{ID: "reg-1", EventID: eventID, VolunteerID: volunteerID},
				&models.Credential{Token: "tok-1", RegistrationID: "reg-1", EventID: eventID, VolunteerID: volunteerID, Kind: models.CredentialEntry},
				nil
		},
	}

	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/v1/events/evt-1/registrations", `{"volunteer_id":"vol-1"}`)
	c.SetParamNames("id")
	c.SetParamValues("evt-1")

	h := NewRegistrationHandler(svc)
	err := h.Register(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.RegisterResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reg-1", resp.Registration.ID)
	assert.Equal(t, models.CredentialEntry, resp.EntryCredential.Kind)
}

func TestRegister_Handler_EmptyVolunteerID(t *testing.T) {
	e := echo.New()
	c, _ := newContext(e, http.MethodPost, "/api/v1/events/evt-1/registrations", `{"volunteer_id":""}`)
	c.SetParamNames("id")
	c.SetParamValues("evt-1")

	h := NewRegistrationHandler(nil)
	err := h.Register(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestRegister_Handler_HalfSlotSelection(t *testing.T) {
	e := echo.New()
	c, _ := newContext(e, http.MethodPost, "/api/v1/events/evt-1/registrations", `{"volunteer_id":"vol-1","slot_id":"slot-1"}`)
	c.SetParamNames("id")
	c.SetParamValues("evt-1")

	h := NewRegistrationHandler(nil)
	err := h.Register(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestRegister_Handler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"no seats", service.ErrNoSeats, http.StatusConflict},
		{"already registered", service.ErrAlreadyRegistered, http.StatusConflict},
		{"category full", service.ErrCategoryFull, http.StatusConflict},
		{"banned", service.ErrBanned, http.StatusForbidden},
		{"slot not found", service.ErrSlotNotFound, http.StatusNotFound},
		{"event not found", service.ErrEventNotFound, http.StatusNotFound},
		{"slot required", service.ErrSlotRequired, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRegistrationService{
				registerFn: func(ctx context.Context, eventID, volunteerID string, members []models.GroupMember, sel *service.SlotSelection) (*models.Registration, *models.Credential, error) {
					return nil, nil, tc.err
				},
			}

			e := echo.New()
			c, _ := newContext(e, http.MethodPost, "/api/v1/events/evt-1/registrations", `{"volunteer_id":"vol-1"}`)
			c.SetParamNames("id")
			c.SetParamValues("evt-1")

			h := NewRegistrationHandler(svc)
			err := h.Register(c)

			he, ok := err.(*echo.HTTPError)
			assert.True(t, ok)
			assert.Equal(t, tc.code, he.Code)
		})
	}
}

func TestCheckRegistration_Handler(t *testing.T) {
	svc := &mockRegistrationService{
		isRegisteredFn: func(ctx context.Context, eventID, volunteerID string) (bool, error) {
			return volunteerID == "vol-1", nil
		},
	}

	e := echo.New()
	c, rec := newContext(e, http.MethodGet, "/api/v1/events/evt-1/registrations/vol-1", "")
	c.SetParamNames("id", "volunteerID")
	c.SetParamValues("evt-1", "vol-1")

	h := NewRegistrationHandler(svc)
	assert.NoError(t, h.CheckRegistration(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CheckRegistrationResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Registered)
}

func TestWithdraw_Handler_Success(t *testing.T) {
	svc := &mockRegistrationService{
		withdrawFn: func(ctx context.Context, eventID, volunteerID string) error { return nil },
	}

	e := echo.New()
	c, rec := newContext(e, http.MethodDelete, "/api/v1/events/evt-1/registrations/vol-1", "")
	c.SetParamNames("id", "volunteerID")
	c.SetParamValues("evt-1", "vol-1")

	h := NewRegistrationHandler(svc)
	assert.NoError(t, h.Withdraw(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWithdraw_Handler_NotRegistered(t *testing.T) {
	svc := &mockRegistrationService{
		withdrawFn: func(ctx context.Context, eventID, volunteerID string) error {
			return service.ErrNotRegistered
		},
	}

	e := echo.New()
	c, _ := newContext(e, http.MethodDelete, "/api/v1/events/evt-1/registrations/vol-ghost", "")
	c.SetParamNames("id", "volunteerID")
	c.SetParamValues("evt-1", "vol-ghost")

	h := NewRegistrationHandler(svc)
	err := h.Withdraw(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestBan_Handler_Unauthorized(t *testing.T) {
	svc := &mockRegistrationService{
		banFn: func(ctx context.Context, eventID, volunteerID, actorID string) error {
			return service.ErrUnauthorized
		},
	}

	e := echo.New()
	c, _ := newContext(e, http.MethodPost, "/api/v1/events/evt-1/bans/vol-1", "")
	c.SetParamNames("id", "volunteerID")
	c.SetParamValues("evt-1", "vol-1")

	h := NewRegistrationHandler(svc)
	err := h.Ban(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}
