package service

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrAlreadyRegistered = errors.New("volunteer is already registered for this event")
	ErrBanned            = errors.New("volunteer is banned from this event")
	ErrNoSeats           = errors.New("no seats available")
	ErrCategoryFull      = errors.New("selected category is full")
	ErrSlotNotFound      = errors.New("time slot or category not found")
	ErrSlotRequired      = errors.New("a time slot selection is required for this event")
	ErrNotRegistered     = errors.New("registration not found")
	ErrInvalidCredential = errors.New("credential is invalid or expired")
	ErrNotCheckedIn      = errors.New("volunteer has not checked in")
	ErrNotCheckedOut     = errors.New("volunteer has not checked out")
	ErrUnauthorized      = errors.New("caller is not authorized for this event")
)
