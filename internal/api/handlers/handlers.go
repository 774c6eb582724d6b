package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/eventface/internal/matching"
	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/pkg/dto"
)

const timeFormat = time.RFC3339

type AttendeeStore interface {
	CreateAttendee(ctx context.Context, a *models.Attendee) error
	GetAttendee(ctx context.Context, id uuid.UUID) (*models.Attendee, error)
}

type ClientStore interface {
	CreateClient(ctx context.Context, name, logoURL string) (*models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
}

// EventCatalog is served by storage.PostgresStore or storage.MongoCatalog.
type EventCatalog interface {
	CreateEvent(ctx context.Context, ev *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	AppendCollectionGroup(ctx context.Context, eventID uuid.UUID, group models.CollectionGroup) error
}

type BlobStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	URL(key string) string
}

type Matcher interface {
	FindMatches(ctx context.Context, attendeeID uuid.UUID) (*matching.Result, error)
}

func clientResponse(c *models.Client) *dto.ClientResponse {
	if c == nil {
		return nil
	}
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		LogoURL:   c.LogoURL,
		CreatedAt: c.CreatedAt.Format(timeFormat),
	}
}

func collectionResponse(col models.Collection) dto.CollectionResponse {
	images := make([]dto.ImageResponse, 0, len(col.Images))
	for _, img := range col.Images {
		images = append(images, dto.ImageResponse{ImageID: img.ImageID, SourceKey: img.SourceKey})
	}
	return dto.CollectionResponse{Name: col.Name, Folder: col.Folder, Images: images}
}

func eventResponse(ev *models.Event, client *models.Client) dto.EventResponse {
	groups := make([][]dto.CollectionResponse, 0, len(ev.Collections))
	for _, group := range ev.Collections {
		cols := make([]dto.CollectionResponse, 0, len(group))
		for _, col := range group {
			cols = append(cols, collectionResponse(col))
		}
		groups = append(groups, cols)
	}
	return dto.EventResponse{
		ID:          ev.ID,
		Name:        ev.Name,
		StartDate:   ev.StartDate.Format(timeFormat),
		EndDate:     ev.EndDate.Format(timeFormat),
		ClientID:    ev.ClientID,
		Client:      clientResponse(client),
		Collections: groups,
		CreatedAt:   ev.CreatedAt.Format(timeFormat),
	}
}
