package admin

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)
