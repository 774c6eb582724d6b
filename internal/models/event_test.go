package models

import (
	"errors"
	"testing"
)

func TestDecodeCollectionGroups_Valid(t *testing.T) {
	raw := []byte(`[
		[
			{"collection_name": "Ceremony", "collection_folder": "events/gala/ceremony",
			 "images": [{"ImageId": "a", "src_key": "A1"}, {"ImageId": "b", "src_key": "A2"}]},
			{"collection_name": "Dinner", "collection_folder": "events/gala/dinner", "images": []}
		],
		[
			{"collection_name": "Party", "collection_folder": "events/gala/party",
			 "images": [{"ImageId": "c", "src_key": "P1"}]}
		]
	]`)

	groups, err := DecodeCollectionGroups(raw)
	if err != nil {
		t.Fatalf("DecodeCollectionGroups returned error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Fatalf("unexpected group sizes %d, %d", len(groups[0]), len(groups[1]))
	}
	if got := groups[0][0].Images[1]; got.ImageID != "b" || got.SourceKey != "A2" {
		t.Errorf("unexpected image %+v", got)
	}

	ev := Event{Collections: groups}
	if ev.ImageCount() != 3 {
		t.Errorf("expected 3 images, got %d", ev.ImageCount())
	}
	if ev.CollectionCount() != 3 {
		t.Errorf("expected 3 collections, got %d", ev.CollectionCount())
	}
}

func TestDecodeCollectionGroups_Empty(t *testing.T) {
	for _, raw := range []string{"", "null", "[]"} {
		groups, err := DecodeCollectionGroups([]byte(raw))
		if err != nil {
			t.Fatalf("%q: unexpected error %v", raw, err)
		}
		if groups == nil || len(groups) != 0 {
			t.Errorf("%q: expected empty non-nil tree, got %#v", raw, groups)
		}
	}
}

func TestDecodeCollectionGroups_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"group is not an array", `[{"collection_name": "x"}]`},
		{"element is a string", `[["not a collection"]]`},
		{"images is an object", `[[{"collection_name": "x", "images": {"ImageId": "a"}}]]`},
		{"missing collection name", `[[{"collection_folder": "f", "images": []}]]`},
		{"missing image id", `[[{"collection_name": "x", "images": [{"src_key": "k"}]}]]`},
		{"missing source key", `[[{"collection_name": "x", "images": [{"ImageId": "a"}]}]]`},
		{"not json", `{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCollectionGroups([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrMalformedEvent) {
				t.Errorf("expected ErrMalformedEvent, got %v", err)
			}
		})
	}
}
