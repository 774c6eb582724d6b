package dto

import "github.com/google/uuid"

// MatchResponse is the body of GET /v1/attendees/:id/matches.
type MatchResponse struct {
	AttendeeID    uuid.UUID      `json:"attendeeId"`
	MatchedEvents []MatchedEvent `json:"matchedEvents"`
}

type MatchedEvent struct {
	EventName   string              `json:"eventName"`
	Collections []MatchedCollection `json:"collections"`
}

type MatchedCollection struct {
	CollectionName string   `json:"collectionName"`
	Images         []string `json:"images"`
}
