package model

import "errors"

var (
	// Session related errors
	ErrNoSession     = errors.New("no active session")
	ErrSessionActive = errors.New("a session is already active")
	ErrInvalidToken  = errors.New("invalid session token")

	// Authorization related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Form related errors
	ErrDraftNotFound   = errors.New("draft not found")
	ErrChainIncomplete = errors.New("cascading selection incomplete")
	ErrTooManyPhotos   = errors.New("photo limit exceeded")
	ErrNotAnImage      = errors.New("file is not an image")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
