package models

import "time"

type AttendanceState string

const (
	StateRegistered AttendanceState = "registered"
	StateCheckedIn  AttendanceState = "checked_in"
	StateCheckedOut AttendanceState = "checked_out"
)

type GroupMember struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Registration struct {
	ID          string `gorm:"primaryKey" json:"id"`
	EventID     string `gorm:"not null;index" json:"event_id"`
	VolunteerID string `gorm:"not null" json:"volunteer_id"`

	// Informational only; group members do not consume extra seats.
	GroupMembers []GroupMember `gorm:"serializer:json" json:"group_members,omitempty"`

	SlotID     *string `json:"slot_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`

	InTime      *time.Time `json:"in_time,omitempty"`
	OutTime     *time.Time `json:"out_time,omitempty"`
	HasAttended bool       `gorm:"not null;default:false" json:"has_attended"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State derives the attendance state from the recorded timestamps.
func (r *Registration) State() AttendanceState {
	switch {
	case r.OutTime != nil:
		return StateCheckedOut
	case r.InTime != nil:
		return StateCheckedIn
	default:
		return StateRegistered
	}
}
