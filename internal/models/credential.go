package models

import "time"

type CredentialKind string

const (
	CredentialEntry CredentialKind = "entry"
	CredentialExit  CredentialKind = "exit"
)

// Credential is a single-use token bound to a registration. A credential is
// live while ConsumedAt is nil. Consumed exit credentials are kept around so
// a duplicate scan after check-out can be answered idempotently; withdrawal
// deletes every credential row for the registration.
type Credential struct {
	Token          string         `gorm:"primaryKey" json:"token"`
	RegistrationID string         `gorm:"not null;index" json:"registration_id"`
	EventID        string         `gorm:"not null" json:"event_id"`
	VolunteerID    string         `gorm:"not null" json:"volunteer_id"`
	Kind           CredentialKind `gorm:"type:varchar(10);not null" json:"kind"`
	ConsumedAt     *time.Time     `json:"consumed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (c *Credential) Live() bool {
	return c.ConsumedAt == nil
}

// EntryPayload is what gets rendered into the entry QR image by the external
// renderer.
type EntryPayload struct {
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	VolunteerID    string `json:"volunteer_id"`
}

// ExitPayload deliberately carries nothing but the random token, so a leaked
// exit image cannot identify or impersonate a registration once consumed.
type ExitPayload struct {
	ExitToken string `json:"exit_token"`
}
