package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a catalog document: one client's event and its photographed collections.
type Event struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	StartDate   time.Time         `json:"startDate" db:"start_date"`
	EndDate     time.Time         `json:"endDate" db:"end_date"`
	ClientID    uuid.UUID         `json:"clientId" db:"client_id"`
	Collections []CollectionGroup `json:"eventCollections" db:"event_collections"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}

// CollectionGroup is the structural layer between an event and its collections.
// Groups are appended as a unit and are not addressable on their own.
type CollectionGroup []Collection

type Collection struct {
	Name   string  `json:"collection_name" bson:"collection_name"`
	Folder string  `json:"collection_folder" bson:"collection_folder"`
	Images []Image `json:"images" bson:"images"`
}

type Image struct {
	// ImageID is the identifier the face index returns for this picture.
	ImageID   string `json:"ImageId" bson:"ImageId"`
	SourceKey string `json:"src_key" bson:"src_key"`
}

// FaceMatch is one hit returned by the face index. Score is a percentage.
type FaceMatch struct {
	ImageID string  `json:"image_id"`
	Score   float64 `json:"score"`
}

// ImageCount returns the number of images across all collections of the event.
func (e *Event) ImageCount() int {
	n := 0
	for _, group := range e.Collections {
		for _, col := range group {
			n += len(col.Images)
		}
	}
	return n
}

// CollectionCount returns the number of collections across all groups.
func (e *Event) CollectionCount() int {
	n := 0
	for _, group := range e.Collections {
		n += len(group)
	}
	return n
}

// DecodeCollectionGroups parses a stored eventCollections value and validates its shape.
// A null or empty payload yields an empty tree.
func DecodeCollectionGroups(raw []byte) ([]CollectionGroup, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []CollectionGroup{}, nil
	}

	var groups []CollectionGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := ValidateCollectionGroups(groups); err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []CollectionGroup{}
	}
	return groups, nil
}

// ValidateCollectionGroups checks the fields the matcher relies on. Every image needs
// an ImageId and a src_key, every collection a name.
func ValidateCollectionGroups(groups []CollectionGroup) error {
	for gi, group := range groups {
		for ci, col := range group {
			if col.Name == "" {
				return fmt.Errorf("%w: eventCollections[%d][%d]: collection_name is empty", ErrMalformedEvent, gi, ci)
			}
			for ii, img := range col.Images {
				if img.ImageID == "" {
					return fmt.Errorf("%w: eventCollections[%d][%d].images[%d]: ImageId is empty", ErrMalformedEvent, gi, ci, ii)
				}
				if img.SourceKey == "" {
					return fmt.Errorf("%w: eventCollections[%d][%d].images[%d]: src_key is empty", ErrMalformedEvent, gi, ci, ii)
				}
			}
		}
	}
	return nil
}

// IndexTask is the message published to NATS for the indexing worker, one per image.
type IndexTask struct {
	IndexID   string    `json:"index_id"`
	EventID   uuid.UUID `json:"event_id"`
	ImageID   string    `json:"image_id"`
	SourceKey string    `json:"src_key"`
	// RunID is set by reindex passes so their tasks are not deduplicated
	// against earlier publishes of the same image.
	RunID     string    `json:"run_id,omitempty"`
}

// IndexResult is published by the worker once an image has been indexed.
type IndexResult struct {
	EventID   uuid.UUID `json:"event_id"`
	ImageID   string    `json:"image_id"`
	SourceKey string    `json:"src_key"`
	Faces     int       `json:"faces"`
	IndexedAt time.Time `json:"indexed_at"`
}
