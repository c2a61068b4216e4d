package domain

import "errors"

// Domain errors.
var (
	ErrInvalidPayload   = errors.New("invalid transport payload")
	ErrIncidentNotFound = errors.New("incident not found")
	ErrTokenRegistered  = errors.New("client token already registered")
	ErrFetchFailed      = errors.New("fetch failed")
	ErrValidation       = errors.New("validation failed")
	ErrPermission       = errors.New("permission denied")
)
