// Package domain holds error values shared by the application services.
package domain

import "errors"

// Sentinel errors returned by services. Handlers translate them to HTTP
// statuses with errors.Is, so services wrap them with fmt.Errorf("...: %w").
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid input")
)
