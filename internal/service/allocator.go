package service

import (
	"context"
	"fmt"

	"github.com/voluntra/signup-service/internal/repository"
)

// CapacityAllocator is the only component that moves occupancy counters.
// Both gates are conditional writes against the store; an admission that
// loses the race on the last seat observes a rejected write, never a stale
// read.
type CapacityAllocator struct {
	events repository.EventRepository
}

func NewCapacityAllocator(events repository.EventRepository) *CapacityAllocator {
	return &CapacityAllocator{events: events}
}

func (a *CapacityAllocator) ReserveSeat(ctx context.Context, eventID string) error {
	ok, err := a.events.ReserveSeat(ctx, eventID)
	if err != nil {
		return fmt.Errorf("reserve seat: %w", err)
	}
	if !ok {
		return ErrNoSeats
	}
	return nil
}

func (a *CapacityAllocator) ReleaseSeat(ctx context.Context, eventID string) error {
	if err := a.events.ReleaseSeat(ctx, eventID); err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}

func (a *CapacityAllocator) ReserveCategorySlot(ctx context.Context, categoryID string) error {
	ok, err := a.events.ReserveCategorySlot(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("reserve category slot: %w", err)
	}
	if !ok {
		return ErrCategoryFull
	}
	return nil
}

func (a *CapacityAllocator) ReleaseCategorySlot(ctx context.Context, categoryID string) error {
	if err := a.events.ReleaseCategorySlot(ctx, categoryID); err != nil {
		return fmt.Errorf("release category slot: %w", err)
	}
	return nil
}
