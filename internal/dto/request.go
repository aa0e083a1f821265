package dto

import "time"

type CreateEventRequest struct {
	Name         string            `json:"name"`
	CapacityMode string            `json:"capacity_mode"`
	MaxSeats     int               `json:"max_seats"`
	TimeSlots    []TimeSlotRequest `json:"time_slots,omitempty"`
}

type TimeSlotRequest struct {
	Name       string            `json:"name"`
	StartTime  string            `json:"start_time"` // HH:MM
	EndTime    string            `json:"end_time"`   // HH:MM
	Categories []CategoryRequest `json:"categories,omitempty"`
}

type CategoryRequest struct {
	Name         string `json:"name"`
	MaxOccupants *int   `json:"max_occupants,omitempty"`
}

type RegisterRequest struct {
	VolunteerID  string               `json:"volunteer_id"`
	GroupMembers []GroupMemberRequest `json:"group_members,omitempty"`
	SlotID       string               `json:"slot_id,omitempty"`
	CategoryID   string               `json:"category_id,omitempty"`
}

type GroupMemberRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type EntryScanRequest struct {
	RegistrationID string `json:"registration_id"`
}

type ExitScanRequest struct {
	ExitToken string `json:"exit_token"`
}

type SetAttendanceRequest struct {
	HasAttended *bool `json:"has_attended"`
}

type EditTimesRequest struct {
	InTime  *time.Time `json:"in_time,omitempty"`
	OutTime *time.Time `json:"out_time,omitempty"`
}
