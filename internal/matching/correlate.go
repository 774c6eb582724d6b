package matching

import "github.com/your-org/eventface/internal/models"

// ImageSet is the set of face-index image identifiers that matched the query photo.
type ImageSet map[string]struct{}

// NewImageSet collects the image identifiers of the given matches. Scores are dropped.
func NewImageSet(matches []models.FaceMatch) ImageSet {
	set := make(ImageSet, len(matches))
	for _, m := range matches {
		set[m.ImageID] = struct{}{}
	}
	return set
}

func (s ImageSet) Contains(imageID string) bool {
	_, ok := s[imageID]
	return ok
}

// EventMatch lists the collections of one event that contain the attendee.
type EventMatch struct {
	EventName   string            `json:"eventName"`
	Collections []CollectionMatch `json:"collections"`
}

// CollectionMatch lists the source keys of the matching images of one collection.
type CollectionMatch struct {
	CollectionName string   `json:"collectionName"`
	Images         []string `json:"images"`
}

// Correlate joins face-index hits with the event catalog.
//
// Collection groups are flattened per event (group order, then collection order). Each
// collection keeps only the images whose ImageID is in matched, projected to their source
// key. Collections left empty are dropped, and so are events left without collections.
// Event, collection and image order follow the input. The result is never nil.
func Correlate(matched ImageSet, events []models.Event) []EventMatch {
	result := make([]EventMatch, 0)
	if len(matched) == 0 {
		return result
	}

	for i := range events {
		collections := correlateEvent(matched, &events[i])
		if len(collections) == 0 {
			continue
		}
		result = append(result, EventMatch{
			EventName:   events[i].Name,
			Collections: collections,
		})
	}
	return result
}

func correlateEvent(matched ImageSet, ev *models.Event) []CollectionMatch {
	var collections []CollectionMatch
	for _, group := range ev.Collections {
		for _, col := range group {
			var images []string
			for _, img := range col.Images {
				if matched.Contains(img.ImageID) {
					images = append(images, img.SourceKey)
				}
			}
			if len(images) == 0 {
				continue
			}
			collections = append(collections, CollectionMatch{
				CollectionName: col.Name,
				Images:         images,
			})
		}
	}
	return collections
}
