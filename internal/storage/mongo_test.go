package storage

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/eventface/internal/models"
)

func TestEventDocument_RoundTrip(t *testing.T) {
	ev := &models.Event{
		ID:        uuid.New(),
		Name:      "Gala",
		StartDate: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 2, 2, 0, 0, 0, time.UTC),
		ClientID:  uuid.New(),
		Collections: []models.CollectionGroup{{
			{Name: "Ceremony", Folder: "events/gala/ceremony", Images: []models.Image{{ImageID: "a", SourceKey: "A1"}}},
		}},
	}

	got, err := fromDocument(toDocument(ev))
	if err != nil {
		t.Fatalf("fromDocument returned error: %v", err)
	}
	if !reflect.DeepEqual(got, ev) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, ev)
	}
}

func TestFromDocument_Malformed(t *testing.T) {
	valid := eventDocument{ID: uuid.NewString(), ClientID: uuid.NewString()}

	tests := []struct {
		name string
		doc  func(eventDocument) eventDocument
	}{
		{"bad id", func(d eventDocument) eventDocument { d.ID = "42"; return d }},
		{"bad client id", func(d eventDocument) eventDocument { d.ClientID = ""; return d }},
		{"image without id", func(d eventDocument) eventDocument {
			d.Collections = []models.CollectionGroup{{{Name: "A", Images: []models.Image{{SourceKey: "k"}}}}}
			return d
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromDocument(tt.doc(valid))
			if !errors.Is(err, models.ErrMalformedEvent) {
				t.Fatalf("expected ErrMalformedEvent, got %v", err)
			}
		})
	}
}

func TestFromDocument_NilCollections(t *testing.T) {
	ev, err := fromDocument(eventDocument{ID: uuid.NewString(), ClientID: uuid.NewString()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Collections == nil {
		t.Error("expected empty non-nil collections")
	}
}
