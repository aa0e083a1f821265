package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/voluntra/signup-service/internal/models"
	"github.com/voluntra/signup-service/internal/repository"
	"gorm.io/gorm"
)

// SlotSelection names the time slot and category a volunteer signed up for.
type SlotSelection struct {
	SlotID     string
	CategoryID string
}

type RegistrationService interface {
	Register(ctx context.Context, eventID, volunteerID string, members []models.GroupMember, sel *SlotSelection) (*models.Registration, *models.Credential, error)
	Withdraw(ctx context.Context, eventID, volunteerID string) error
	IsRegistered(ctx context.Context, eventID, volunteerID string) (bool, error)
	RemoveVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error
	BanVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error
	UnbanVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error
}

type registrationService struct {
	events    repository.EventRepository
	regs      repository.RegistrationRepository
	creds     repository.CredentialRepository
	allocator *CapacityAllocator
	notifier  Notifier
}

func NewRegistrationService(
	events repository.EventRepository,
	regs repository.RegistrationRepository,
	creds repository.CredentialRepository,
	allocator *CapacityAllocator,
	notifier Notifier,
) RegistrationService {
	return &registrationService{
		events:    events,
		regs:      regs,
		creds:     creds,
		allocator: allocator,
		notifier:  notifier,
	}
}

// Register admits a volunteer through up to two capacity gates. The category
// gate is attempted first; a later failure at the event-wide gate compensates
// the category reservation. This is deliberately a saga with explicit
// rollback, not a multi-object transaction.
func (s *registrationService) Register(ctx context.Context, eventID, volunteerID string, members []models.GroupMember, sel *SlotSelection) (*models.Registration, *models.Credential, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, fmt.Errorf("find event: %w", err)
	}

	banned, err := s.events.IsBanned(ctx, eventID, volunteerID)
	if err != nil {
		return nil, nil, fmt.Errorf("ban check: %w", err)
	}
	if banned {
		return nil, nil, ErrBanned
	}

	if _, err := s.regs.FindByEventAndVolunteer(ctx, eventID, volunteerID); err == nil {
		return nil, nil, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("duplicate check: %w", err)
	}

	// A previous removal does not block re-registration; clear the mark.
	removed, err := s.events.IsRemoved(ctx, eventID, volunteerID)
	if err != nil {
		return nil, nil, fmt.Errorf("removal check: %w", err)
	}
	if removed {
		if err := s.events.ClearRemoved(ctx, eventID, volunteerID); err != nil {
			return nil, nil, fmt.Errorf("clear removal: %w", err)
		}
	}

	var slotID, categoryID *string
	if event.TimeSlotsEnabled {
		if sel == nil {
			return nil, nil, ErrSlotRequired
		}
		cat, err := s.events.FindCategory(ctx, eventID, sel.SlotID, sel.CategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrSlotNotFound
			}
			return nil, nil, fmt.Errorf("find category: %w", err)
		}
		if err := s.allocator.ReserveCategorySlot(ctx, cat.ID); err != nil {
			return nil, nil, err
		}
		slotID, categoryID = &sel.SlotID, &cat.ID
	}

	if err := s.allocator.ReserveSeat(ctx, eventID); err != nil {
		s.compensate(ctx, eventID, categoryID, false)
		if errors.Is(err, ErrNoSeats) {
			// Distinguish a genuine full house from a racing duplicate so the
			// caller gets a precise message.
			if _, dupErr := s.regs.FindByEventAndVolunteer(ctx, eventID, volunteerID); dupErr == nil {
				return nil, nil, ErrAlreadyRegistered
			}
		}
		return nil, nil, err
	}

	reg := &models.Registration{
		ID:           uuid.NewString(),
		EventID:      eventID,
		VolunteerID:  volunteerID,
		GroupMembers: members,
		SlotID:       slotID,
		CategoryID:   categoryID,
	}
	if err := s.regs.Create(ctx, reg); err != nil {
		s.compensate(ctx, eventID, categoryID, true)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrAlreadyRegistered
		}
		return nil, nil, fmt.Errorf("create registration: %w", err)
	}

	entry := &models.Credential{
		Token:          uuid.NewString(),
		RegistrationID: reg.ID,
		EventID:        eventID,
		VolunteerID:    volunteerID,
		Kind:           models.CredentialEntry,
	}
	if err := s.creds.Create(ctx, entry); err != nil {
		if _, delErr := s.regs.Delete(ctx, reg.ID); delErr != nil {
			log.Printf("[Registration] rollback delete %s: %v", reg.ID, delErr)
		}
		s.compensate(ctx, eventID, categoryID, true)
		return nil, nil, fmt.Errorf("issue entry credential: %w", err)
	}

	s.publishOccupancy(eventID, volunteerID, +1)
	return reg, entry, nil
}

func (s *registrationService) Withdraw(ctx context.Context, eventID, volunteerID string) error {
	reg, err := s.regs.FindByEventAndVolunteer(ctx, eventID, volunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotRegistered
		}
		return fmt.Errorf("find registration: %w", err)
	}
	return s.release(ctx, reg)
}

func (s *registrationService) IsRegistered(ctx context.Context, eventID, volunteerID string) (bool, error) {
	_, err := s.regs.FindByEventAndVolunteer(ctx, eventID, volunteerID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// RemoveVolunteer is the organizer kick: it clears the occupancy like a
// withdrawal and marks the volunteer removed, which the volunteer can undo by
// registering again.
func (s *registrationService) RemoveVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error {
	if err := s.authorizeOrganizer(ctx, eventID, actorID); err != nil {
		return err
	}
	reg, err := s.regs.FindByEventAndVolunteer(ctx, eventID, volunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotRegistered
		}
		return fmt.Errorf("find registration: %w", err)
	}
	if err := s.release(ctx, reg); err != nil {
		return err
	}
	return s.events.MarkRemoved(ctx, eventID, volunteerID)
}

// BanVolunteer hard-blocks future registrations. An active registration is
// released as part of the ban.
func (s *registrationService) BanVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error {
	if err := s.authorizeOrganizer(ctx, eventID, actorID); err != nil {
		return err
	}
	if err := s.events.Ban(ctx, eventID, volunteerID); err != nil {
		return fmt.Errorf("ban: %w", err)
	}
	reg, err := s.regs.FindByEventAndVolunteer(ctx, eventID, volunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find registration: %w", err)
	}
	return s.release(ctx, reg)
}

func (s *registrationService) UnbanVolunteer(ctx context.Context, eventID, volunteerID, actorID string) error {
	if err := s.authorizeOrganizer(ctx, eventID, actorID); err != nil {
		return err
	}
	return s.events.Unban(ctx, eventID, volunteerID)
}

// release deletes the registration row and frees the capacity it held. The
// conditional delete is the idempotency gate: capacity moves only when this
// call is the one that removed the row, so a retried or racing withdraw can
// never release the same seat twice. Credential cleanup is best-effort.
func (s *registrationService) release(ctx context.Context, reg *models.Registration) error {
	deleted, err := s.regs.Delete(ctx, reg.ID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if !deleted {
		return nil
	}
	if err := s.creds.DeleteByRegistration(ctx, reg.ID); err != nil {
		log.Printf("[Registration] revoke credentials for %s: %v", reg.ID, err)
	}
	if reg.CategoryID != nil {
		if err := s.allocator.ReleaseCategorySlot(ctx, *reg.CategoryID); err != nil {
			return err
		}
	}
	if err := s.allocator.ReleaseSeat(ctx, reg.EventID); err != nil {
		return err
	}
	s.publishOccupancy(reg.EventID, reg.VolunteerID, -1)
	return nil
}

// compensate rolls back partially acquired reservations from the same call.
func (s *registrationService) compensate(ctx context.Context, eventID string, categoryID *string, seatTaken bool) {
	if seatTaken {
		if err := s.allocator.ReleaseSeat(ctx, eventID); err != nil {
			log.Printf("[Registration] compensate seat for %s: %v", eventID, err)
		}
	}
	if categoryID != nil {
		if err := s.allocator.ReleaseCategorySlot(ctx, *categoryID); err != nil {
			log.Printf("[Registration] compensate category %s: %v", *categoryID, err)
		}
	}
}

func (s *registrationService) authorizeOrganizer(ctx context.Context, eventID, actorID string) error {
	ok, err := s.events.IsOrganizer(ctx, eventID, actorID)
	if err != nil {
		return fmt.Errorf("organizer check: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

func (s *registrationService) publishOccupancy(eventID, volunteerID string, delta int) {
	payload := OccupancyChanged{EventID: eventID, VolunteerID: volunteerID, Delta: delta}
	if err := s.notifier.Publish(TopicOccupancyChanged, payload); err != nil {
		log.Printf("[Registration] publish occupancy change: %v", err)
	}
}
