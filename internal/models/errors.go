package models

import "errors"

var (
	// ErrNotFound is returned by lookups that miss.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique name is already taken.
	ErrDuplicate = errors.New("already exists")
	// ErrMalformedEvent marks a stored event document whose collection tree has the wrong shape.
	ErrMalformedEvent = errors.New("malformed event document")
)
