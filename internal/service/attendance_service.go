package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/voluntra/signup-service/internal/models"
	"github.com/voluntra/signup-service/internal/repository"
	"gorm.io/gorm"
)

type CheckSource string

const (
	SourceScan   CheckSource = "scan"
	SourceManual CheckSource = "manual"
)

// AttendanceService is the single authoritative owner of the
// registered → checked-in → checked-out transitions. Scan and manual paths
// are thin callers into the same methods, so credential rotation can never
// be skipped by one of them.
type AttendanceService interface {
	CheckIn(ctx context.Context, registrationID string, source CheckSource, actorID string) (*models.Registration, error)
	EntryScan(ctx context.Context, registrationID, actorID string) (*models.Registration, *models.Credential, error)
	CheckOut(ctx context.Context, registrationID string, source CheckSource, actorID string) (*models.Registration, error)
	ExitScan(ctx context.Context, exitToken, actorID string) (*models.Registration, error)
	SetHasAttended(ctx context.Context, registrationID string, attended bool, actorID string) (*models.Registration, error)
	EditTimes(ctx context.Context, registrationID string, inTime, outTime *time.Time, actorID string) (*models.Registration, error)
	ExitCredential(ctx context.Context, registrationID, actorID string) (*models.Credential, error)
}

type attendanceService struct {
	events   repository.EventRepository
	regs     repository.RegistrationRepository
	creds    repository.CredentialRepository
	notifier Notifier
}

func NewAttendanceService(
	events repository.EventRepository,
	regs repository.RegistrationRepository,
	creds repository.CredentialRepository,
	notifier Notifier,
) AttendanceService {
	return &attendanceService{events: events, regs: regs, creds: creds, notifier: notifier}
}

// CheckIn records the in-time and rotates the entry credential into an exit
// credential. Calling it again for a checked-in registration is a no-op that
// returns the current state.
func (s *attendanceService) CheckIn(ctx context.Context, registrationID string, source CheckSource, actorID string) (*models.Registration, error) {
	reg, err := s.findRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, reg, actorID); err != nil {
		return nil, err
	}
	return s.doCheckIn(ctx, reg)
}

// EntryScan is the QR path into CheckIn. It demands a live entry credential;
// a registration that is already checked in is answered idempotently with
// its current state and live exit credential.
func (s *attendanceService) EntryScan(ctx context.Context, registrationID, actorID string) (*models.Registration, *models.Credential, error) {
	reg, err := s.regs.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Scanned payload points at nothing; the registration was likely
			// withdrawn, so the credential is dead.
			return nil, nil, ErrInvalidCredential
		}
		return nil, nil, fmt.Errorf("find registration: %w", err)
	}
	if err := s.authorize(ctx, reg, actorID); err != nil {
		return nil, nil, err
	}

	if _, err := s.creds.FindLive(ctx, reg.ID, models.CredentialEntry); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("find entry credential: %w", err)
		}
		if reg.InTime == nil {
			return nil, nil, ErrInvalidCredential
		}
		// Duplicate entry scan after check-in: already recorded.
		exit, exitErr := s.creds.FindLive(ctx, reg.ID, models.CredentialExit)
		if exitErr != nil && !errors.Is(exitErr, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("find exit credential: %w", exitErr)
		}
		return reg, exit, nil
	}

	updated, err := s.doCheckIn(ctx, reg)
	if err != nil {
		return nil, nil, err
	}
	exit, err := s.creds.FindLive(ctx, updated.ID, models.CredentialExit)
	if err != nil {
		return nil, nil, fmt.Errorf("find exit credential: %w", err)
	}
	return updated, exit, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, registrationID string, source CheckSource, actorID string) (*models.Registration, error) {
	reg, err := s.findRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, reg, actorID); err != nil {
		return nil, err
	}
	if reg.OutTime != nil {
		return reg, nil
	}
	if reg.InTime == nil {
		return nil, ErrNotCheckedIn
	}
	return s.doCheckOut(ctx, reg, "")
}

// ExitScan consumes an exit token. A token that was already consumed by a
// completed check-out answers with the recorded state instead of an error;
// anything else unknown or dead is invalid.
func (s *attendanceService) ExitScan(ctx context.Context, exitToken, actorID string) (*models.Registration, error) {
	cred, err := s.creds.FindByToken(ctx, exitToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	if cred.Kind != models.CredentialExit {
		return nil, ErrInvalidCredential
	}

	reg, err := s.regs.FindByID(ctx, cred.RegistrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	if err := s.authorize(ctx, reg, actorID); err != nil {
		return nil, err
	}

	if !cred.Live() {
		if reg.OutTime != nil {
			return reg, nil
		}
		return nil, ErrInvalidCredential
	}
	return s.doCheckOut(ctx, reg, cred.Token)
}

// SetHasAttended is the organizer override. Marking attended routes through
// the same check-in path so the entry credential is still retired; unmarking
// reverses the transition and hands the volunteer a fresh entry credential.
func (s *attendanceService) SetHasAttended(ctx context.Context, registrationID string, attended bool, actorID string) (*models.Registration, error) {
	if attended {
		return s.CheckIn(ctx, registrationID, SourceManual, actorID)
	}

	reg, err := s.findRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, reg, actorID); err != nil {
		return nil, err
	}
	if reg.InTime == nil && !reg.HasAttended {
		return reg, nil
	}

	if err := s.creds.DeleteByRegistration(ctx, reg.ID); err != nil {
		log.Printf("[Attendance] revoke credentials for %s: %v", reg.ID, err)
	}
	if err := s.regs.ClearAttendance(ctx, reg.ID); err != nil {
		return nil, fmt.Errorf("clear attendance: %w", err)
	}
	entry := &models.Credential{
		Token:          uuid.NewString(),
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		VolunteerID:    reg.VolunteerID,
		Kind:           models.CredentialEntry,
	}
	if err := s.creds.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("reissue entry credential: %w", err)
	}

	updated, err := s.regs.FindByID(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("reload registration: %w", err)
	}
	s.publishAttendance(updated)
	return updated, nil
}

// EditTimes is pure timestamp correction. It never touches credentials, and
// each field can only be corrected once its transition has actually happened.
func (s *attendanceService) EditTimes(ctx context.Context, registrationID string, inTime, outTime *time.Time, actorID string) (*models.Registration, error) {
	reg, err := s.findRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, reg, actorID); err != nil {
		return nil, err
	}
	if inTime != nil && reg.InTime == nil {
		return nil, ErrNotCheckedIn
	}
	if outTime != nil && reg.OutTime == nil {
		return nil, ErrNotCheckedOut
	}

	if err := s.regs.UpdateTimes(ctx, reg.ID, inTime, outTime); err != nil {
		return nil, fmt.Errorf("update times: %w", err)
	}
	updated, err := s.regs.FindByID(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("reload registration: %w", err)
	}
	s.publishAttendance(updated)
	return updated, nil
}

// ExitCredential re-fetches the live exit credential for a checked-in
// registration, reissuing it if the original issue failed.
func (s *attendanceService) ExitCredential(ctx context.Context, registrationID, actorID string) (*models.Credential, error) {
	reg, err := s.findRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, reg, actorID); err != nil {
		return nil, err
	}
	if reg.InTime == nil {
		return nil, ErrNotCheckedIn
	}
	if reg.OutTime != nil {
		return nil, ErrInvalidCredential
	}

	exit, err := s.creds.FindLive(ctx, reg.ID, models.CredentialExit)
	if err == nil {
		return exit, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find exit credential: %w", err)
	}
	return s.issueExit(ctx, reg)
}

func (s *attendanceService) doCheckIn(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	if reg.InTime != nil {
		return reg, nil
	}

	now := time.Now()
	ok, err := s.regs.SetInTime(ctx, reg.ID, now)
	if err != nil {
		return nil, fmt.Errorf("record check-in: %w", err)
	}
	if !ok {
		// Lost a race against another check-in; the recorded state wins.
		return s.regs.FindByID(ctx, reg.ID)
	}

	// Rotate entry → exit. The timestamp above is the source of truth;
	// credential cleanup failures are logged, not surfaced.
	if entry, err := s.creds.FindLive(ctx, reg.ID, models.CredentialEntry); err == nil {
		if _, err := s.creds.Consume(ctx, entry.Token); err != nil {
			log.Printf("[Attendance] consume entry credential for %s: %v", reg.ID, err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[Attendance] find entry credential for %s: %v", reg.ID, err)
	}
	if _, err := s.issueExit(ctx, reg); err != nil {
		return nil, err
	}

	updated, err := s.regs.FindByID(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("reload registration: %w", err)
	}
	s.publishAttendance(updated)
	return updated, nil
}

// doCheckOut records the out-time. When reached via scan, the token has
// already been consumed as the single-use gate; manual check-out consumes
// whatever exit credential is still live.
func (s *attendanceService) doCheckOut(ctx context.Context, reg *models.Registration, scannedToken string) (*models.Registration, error) {
	if scannedToken != "" {
		ok, err := s.creds.Consume(ctx, scannedToken)
		if err != nil {
			return nil, fmt.Errorf("consume exit credential: %w", err)
		}
		if !ok {
			// Another scan got there first.
			current, err := s.regs.FindByID(ctx, reg.ID)
			if err != nil {
				return nil, fmt.Errorf("reload registration: %w", err)
			}
			if current.OutTime != nil {
				return current, nil
			}
			return nil, ErrInvalidCredential
		}
	}

	now := time.Now()
	ok, err := s.regs.SetOutTime(ctx, reg.ID, now)
	if err != nil {
		return nil, fmt.Errorf("record check-out: %w", err)
	}
	if !ok {
		return s.regs.FindByID(ctx, reg.ID)
	}

	if scannedToken == "" {
		if exit, err := s.creds.FindLive(ctx, reg.ID, models.CredentialExit); err == nil {
			if _, err := s.creds.Consume(ctx, exit.Token); err != nil {
				log.Printf("[Attendance] consume exit credential for %s: %v", reg.ID, err)
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Attendance] find exit credential for %s: %v", reg.ID, err)
		}
	}

	updated, err := s.regs.FindByID(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("reload registration: %w", err)
	}
	s.publishAttendance(updated)
	return updated, nil
}

func (s *attendanceService) issueExit(ctx context.Context, reg *models.Registration) (*models.Credential, error) {
	exit := &models.Credential{
		Token:          uuid.NewString(),
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		VolunteerID:    reg.VolunteerID,
		Kind:           models.CredentialExit,
	}
	if err := s.creds.Create(ctx, exit); err != nil {
		return nil, fmt.Errorf("issue exit credential: %w", err)
	}
	return exit, nil
}

func (s *attendanceService) findRegistration(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.regs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

// authorize requires the actor to be on the event's organizing team. A
// registration held by another organizer can only be marked by the event's
// creator.
func (s *attendanceService) authorize(ctx context.Context, reg *models.Registration, actorID string) error {
	ok, err := s.events.IsOrganizer(ctx, reg.EventID, actorID)
	if err != nil {
		return fmt.Errorf("organizer check: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}

	targetIsOrganizer, err := s.events.IsOrganizer(ctx, reg.EventID, reg.VolunteerID)
	if err != nil {
		return fmt.Errorf("organizer check: %w", err)
	}
	if targetIsOrganizer && reg.VolunteerID != actorID {
		event, err := s.events.FindByID(ctx, reg.EventID)
		if err != nil {
			return fmt.Errorf("find event: %w", err)
		}
		if event.CreatorID != actorID {
			return ErrUnauthorized
		}
	}
	return nil
}

func (s *attendanceService) publishAttendance(reg *models.Registration) {
	payload := AttendanceChanged{
		EventID:        reg.EventID,
		RegistrationID: reg.ID,
		VolunteerID:    reg.VolunteerID,
		InTime:         reg.InTime,
		OutTime:        reg.OutTime,
	}
	if err := s.notifier.Publish(TopicAttendanceChanged, payload); err != nil {
		log.Printf("[Attendance] publish attendance change: %v", err)
	}
}
