package matching

import (
	"errors"
	"fmt"
)

// Error kinds returned by FindMatches. Match them with errors.Is.
var (
	ErrPersonNotFound     = errors.New("attendee not found")
	ErrUnreachableContent = errors.New("profile image could not be retrieved")
	ErrIndexQueryFailed   = errors.New("face index query failed")
	ErrCatalogReadFailed  = errors.New("event catalog could not be read")
)

// Pipeline stages, used in logs and in StageError.
const (
	StageResolveProfile = "resolve_profile"
	StageFetchImage     = "fetch_image"
	StageSearchIndex    = "search_index"
	StageListEvents     = "list_events"
)

// StageError records which stage of a match request failed, for which attendee, and why.
// It unwraps to both its kind and the underlying cause.
type StageError struct {
	Stage      string
	AttendeeID string
	Kind       error
	Err        error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s (attendee_id=%s): %v: %v", e.Stage, e.AttendeeID, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{e.Kind, e.Err}
}

func stageError(stage, attendeeID string, kind, err error) error {
	return &StageError{Stage: stage, AttendeeID: attendeeID, Kind: kind, Err: err}
}

// Kind returns the error kind carried by err, or nil when err is not a match failure.
func Kind(err error) error {
	for _, kind := range []error{ErrPersonNotFound, ErrUnreachableContent, ErrIndexQueryFailed, ErrCatalogReadFailed} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
