package services

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrEditWindowClosed = errors.New("bonus can only be edited on the same day")
	ErrBonusTooLong     = errors.New("bonus must be 250 characters or less")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrTooManyAttempts  = errors.New("too many login attempts, try again later")
	ErrNotConfigured    = errors.New("admin password not configured")
	ErrInvalidCursor    = errors.New("invalid cursor")
)
