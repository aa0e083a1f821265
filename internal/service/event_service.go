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

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

type eventService struct {
	events   repository.EventRepository
	notifier Notifier
}

func NewEventService(events repository.EventRepository, notifier Notifier) EventService {
	return &eventService{events: events, notifier: notifier}
}

// CreateEvent validates the capacity profile, assigns IDs through the slot
// tree and registers the creator as the first organizer.
func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.TimeSlotsEnabled = len(event.TimeSlots) > 0
	for i := range event.TimeSlots {
		slot := &event.TimeSlots[i]
		slot.ID = uuid.NewString()
		slot.EventID = event.ID
		for j := range slot.Categories {
			slot.Categories[j].ID = uuid.NewString()
			slot.Categories[j].TimeSlotID = slot.ID
		}
	}

	if err := s.events.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	if err := s.events.AddOrganizer(ctx, event.ID, event.CreatorID); err != nil {
		return fmt.Errorf("add creator as organizer: %w", err)
	}

	if err := s.notifier.Publish(TopicEventCreated, event); err != nil {
		log.Printf("[Event] publish event created: %v", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}
