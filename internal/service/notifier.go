package service

import "time"

// Routing keys published to the signup exchange.
const (
	TopicEventCreated      = "signup.event.created"
	TopicOccupancyChanged  = "signup.occupancy.changed"
	TopicAttendanceChanged = "signup.attendance.changed"
)

// Notifier is the publish-only capability the core needs from the message
// bus. rabbitmq.Publisher satisfies it; tests use a recording fake.
type Notifier interface {
	Publish(routingKey string, payload any) error
}

// OccupancyChanged feeds live seat counters on the event page.
type OccupancyChanged struct {
	EventID     string `json:"event_id"`
	VolunteerID string `json:"volunteer_id"`
	Delta       int    `json:"delta"`
}

type AttendanceChanged struct {
	EventID        string     `json:"event_id"`
	RegistrationID string     `json:"registration_id"`
	VolunteerID    string     `json:"volunteer_id"`
	InTime         *time.Time `json:"in_time,omitempty"`
	OutTime        *time.Time `json:"out_time,omitempty"`
}
