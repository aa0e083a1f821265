package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type CapacityMode string

const (
	CapacityUnlimited CapacityMode = "unlimited"
	CapacityFixed     CapacityMode = "fixed"
)

var (
	ErrInvalidMaxSeats      = errors.New("fixed-capacity event requires max_seats > 0")
	ErrInvalidTimeRange     = errors.New("time slot end must be after start")
	ErrOverlappingTimeSlots = errors.New("time slots must not overlap")
	ErrDuplicateCategory    = errors.New("category names must be unique within a time slot")
	ErrInvalidClockTime     = errors.New("time must be in HH:MM format")
	ErrInvalidMaxOccupants  = errors.New("category max_occupants must be > 0 when set")
)

type Event struct {
	ID               string       `gorm:"primaryKey" json:"id"`
	Name             string       `gorm:"not null" json:"name"`
	CreatorID        string       `gorm:"not null" json:"creator_id"`
	CapacityMode     CapacityMode `gorm:"type:varchar(20);not null;default:'unlimited'" json:"capacity_mode"`
	MaxSeats         int          `json:"max_seats"`
	OccupantCount    int          `gorm:"not null;default:0" json:"occupant_count"`
	TimeSlotsEnabled bool         `gorm:"not null;default:false" json:"time_slots_enabled"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	TimeSlots []TimeSlot `gorm:"foreignKey:EventID" json:"time_slots,omitempty"`
}

type TimeSlot struct {
	ID        string `gorm:"primaryKey" json:"id"`
	EventID   string `gorm:"not null;index" json:"event_id"`
	Name      string `gorm:"not null" json:"name"`
	StartTime string `gorm:"not null" json:"start_time"` // HH:MM
	EndTime   string `gorm:"not null" json:"end_time"`   // HH:MM

	Categories []SlotCategory `gorm:"foreignKey:TimeSlotID" json:"categories,omitempty"`
}

type SlotCategory struct {
	ID               string `gorm:"primaryKey" json:"id"`
	TimeSlotID       string `gorm:"not null;index" json:"time_slot_id"`
	Name             string `gorm:"not null" json:"name"`
	MaxOccupants     *int   `json:"max_occupants,omitempty"` // nil = unlimited
	CurrentOccupants int    `gorm:"not null;default:0" json:"current_occupants"`
}

// BannedVolunteer is a hard block on (re)registration for one event.
type BannedVolunteer struct {
	EventID     string    `gorm:"primaryKey" json:"event_id"`
	VolunteerID string    `gorm:"primaryKey" json:"volunteer_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// RemovedVolunteer records an organizer kick; it is cleared when the
// volunteer registers again.
type RemovedVolunteer struct {
	EventID     string    `gorm:"primaryKey" json:"event_id"`
	VolunteerID string    `gorm:"primaryKey" json:"volunteer_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type EventOrganizer struct {
	EventID   string    `gorm:"primaryKey" json:"event_id"`
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the capacity rules of an event and its time slot tree.
func (e *Event) Validate() error {
	if e.CapacityMode == CapacityFixed && e.MaxSeats <= 0 {
		return ErrInvalidMaxSeats
	}

	for i := range e.TimeSlots {
		if err := e.TimeSlots[i].Validate(); err != nil {
			return err
		}
	}

	// No two slots on the same event may overlap on [start, end).
	for i := range e.TimeSlots {
		for j := i + 1; j < len(e.TimeSlots); j++ {
			a, b := &e.TimeSlots[i], &e.TimeSlots[j]
			aStart, _ := parseClock(a.StartTime)
			aEnd, _ := parseClock(a.EndTime)
			bStart, _ := parseClock(b.StartTime)
			bEnd, _ := parseClock(b.EndTime)
			if aStart < bEnd && bStart < aEnd {
				return fmt.Errorf("%w: %q and %q", ErrOverlappingTimeSlots, a.Name, b.Name)
			}
		}
	}

	return nil
}

func (s *TimeSlot) Validate() error {
	start, err := parseClock(s.StartTime)
	if err != nil {
		return err
	}
	end, err := parseClock(s.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("%w: %q", ErrInvalidTimeRange, s.Name)
	}

	seen := make(map[string]bool, len(s.Categories))
	for i := range s.Categories {
		c := &s.Categories[i]
		if seen[c.Name] {
			return fmt.Errorf("%w: %q in slot %q", ErrDuplicateCategory, c.Name, s.Name)
		}
		seen[c.Name] = true
		if c.MaxOccupants != nil && *c.MaxOccupants <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidMaxOccupants, c.Name)
		}
	}
	return nil
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, v)
	}
	return h*60 + m, nil
}
