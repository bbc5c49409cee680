package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrNoVendor               = errors.New("product has no vendor")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrConcurrentModification = errors.New("concurrent modification")
)
