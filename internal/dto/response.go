package dto

import (
	"time"

	"github.com/voluntra/signup-service/internal/models"
)

type RegistrationResponse struct {
	ID           string                 `json:"id"`
	EventID      string                 `json:"event_id"`
	VolunteerID  string                 `json:"volunteer_id"`
	State        models.AttendanceState `json:"state"`
	SlotID       *string                `json:"slot_id,omitempty"`
	CategoryID   *string                `json:"category_id,omitempty"`
	GroupMembers []models.GroupMember   `json:"group_members,omitempty"`
	InTime       *time.Time             `json:"in_time,omitempty"`
	OutTime      *time.Time             `json:"out_time,omitempty"`
	HasAttended  bool                   `json:"has_attended"`
	CreatedAt    time.Time              `json:"created_at"`
}

// CredentialResponse carries the payload the external renderer encodes into
// a scannable image. Entry credentials expose the registration identity;
// exit credentials expose nothing but the token.
type CredentialResponse struct {
	Kind    models.CredentialKind `json:"kind"`
	Payload any                   `json:"payload"`
}

type RegisterResponse struct {
	Registration    RegistrationResponse `json:"registration"`
	EntryCredential CredentialResponse   `json:"entry_credential"`
}

type CheckRegistrationResponse struct {
	Registered bool `json:"registered"`
}

type CategoryStatusResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	MaxOccupants     *int   `json:"max_occupants,omitempty"`
	CurrentOccupants int    `json:"current_occupants"`
}

type TimeSlotStatusResponse struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	StartTime  string                   `json:"start_time"`
	EndTime    string                   `json:"end_time"`
	Categories []CategoryStatusResponse `json:"categories,omitempty"`
}

type EventStatusResponse struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	CapacityMode   models.CapacityMode      `json:"capacity_mode"`
	MaxSeats       int                      `json:"max_seats,omitempty"`
	OccupantCount  int                      `json:"occupant_count"`
	SeatsAvailable *int                     `json:"seats_available,omitempty"`
	TimeSlots      []TimeSlotStatusResponse `json:"time_slots,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToRegistrationResponse(r *models.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:           r.ID,
		EventID:      r.EventID,
		VolunteerID:  r.VolunteerID,
		State:        r.State(),
		SlotID:       r.SlotID,
		CategoryID:   r.CategoryID,
		GroupMembers: r.GroupMembers,
		InTime:       r.InTime,
		OutTime:      r.OutTime,
		HasAttended:  r.HasAttended,
		CreatedAt:    r.CreatedAt,
	}
}

func ToCredentialResponse(c *models.Credential) CredentialResponse {
	if c.Kind == models.CredentialEntry {
		return CredentialResponse{
			Kind: c.Kind,
			Payload: models.EntryPayload{
				RegistrationID: c.RegistrationID,
				EventID:        c.EventID,
				VolunteerID:    c.VolunteerID,
			},
		}
	}
	return CredentialResponse{
		Kind:    c.Kind,
		Payload: models.ExitPayload{ExitToken: c.Token},
	}
}

func ToEventStatusResponse(e *models.Event) EventStatusResponse {
	resp := EventStatusResponse{
		ID:            e.ID,
		Name:          e.Name,
		CapacityMode:  e.CapacityMode,
		MaxSeats:      e.MaxSeats,
		OccupantCount: e.OccupantCount,
	}
	if e.CapacityMode == models.CapacityFixed {
		avail := e.MaxSeats - e.OccupantCount
		if avail < 0 {
			avail = 0
		}
		resp.SeatsAvailable = &avail
	}
	for _, slot := range e.TimeSlots {
		s := TimeSlotStatusResponse{
			ID:        slot.ID,
			Name:      slot.Name,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		}
		for _, cat := range slot.Categories {
			s.Categories = append(s.Categories, CategoryStatusResponse{
				ID:               cat.ID,
				Name:             cat.Name,
				MaxOccupants:     cat.MaxOccupants,
				CurrentOccupants: cat.CurrentOccupants,
			})
		}
		resp.TimeSlots = append(resp.TimeSlots, s)
	}
	return resp
}
