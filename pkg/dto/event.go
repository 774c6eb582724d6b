package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
	ClientID  uuid.UUID `json:"clientId" binding:"required"`
}

type EventResponse struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	StartDate   string                 `json:"startDate"`
	EndDate     string                 `json:"endDate"`
	ClientID    uuid.UUID              `json:"clientId"`
	Client      *ClientResponse        `json:"client,omitempty"`
	Collections [][]CollectionResponse `json:"eventCollections"`
	CreatedAt   string                 `json:"createdAt"`
}

type CollectionResponse struct {
	Name   string          `json:"collection_name"`
	Folder string          `json:"collection_folder"`
	Images []ImageResponse `json:"images"`
}

type ImageResponse struct {
	ImageID   string `json:"ImageId"`
	SourceKey string `json:"src_key"`
}

// EventDetailsResponse is the public summary of an event.
type EventDetailsResponse struct {
	ID              uuid.UUID                 `json:"id"`
	Name            string                    `json:"name"`
	StartDate       string                    `json:"startDate"`
	EndDate         string                    `json:"endDate"`
	Client          *ClientResponse           `json:"client,omitempty"`
	CollectionCount int                       `json:"collectionCount"`
	ImageCount      int                       `json:"imageCount"`
	Collections     []CollectionSummaryResult `json:"collections"`
}

type CollectionSummaryResult struct {
	Name       string `json:"collection_name"`
	Folder     string `json:"collection_folder"`
	ImageCount int    `json:"imageCount"`
}

// AppendCollectionsRequest adds one collection group to an event. Image ids are
// assigned by the server.
type AppendCollectionsRequest struct {
	Collections []CollectionRequest `json:"collections" binding:"required,min=1,dive"`
}

type CollectionRequest struct {
	Name   string         `json:"collection_name" binding:"required"`
	Folder string         `json:"collection_folder"`
	Images []ImageRequest `json:"images" binding:"required,min=1,dive"`
}

type ImageRequest struct {
	SourceKey string `json:"src_key" binding:"required"`
}

type AppendCollectionsResponse struct {
	EventID     uuid.UUID            `json:"eventId"`
	Collections []CollectionResponse `json:"collections"`
	Queued      int                  `json:"queued"`
}
