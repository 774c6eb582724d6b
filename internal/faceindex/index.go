// Package faceindex is the face index client: it turns photos into embeddings
// and searches or fills the pgvector face table with them.
package faceindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/internal/observability"
	"github.com/your-org/eventface/internal/storage"
	"github.com/your-org/eventface/internal/vision"
)

type Encoder interface {
	Encode(data []byte) ([]vision.Face, error)
}

type Store interface {
	SearchFaces(ctx context.Context, indexID string, embedding []float32, minScore float64, limit int) ([]models.FaceMatch, error)
	ReplaceFaces(ctx context.Context, indexID, imageID string, faces []storage.FaceVector) error
}

type Index struct {
	encoder      Encoder
	store        Store
	queryTimeout time.Duration
	logger       *slog.Logger
}

func New(encoder Encoder, store Store, queryTimeout time.Duration, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		encoder:      encoder,
		store:        store,
		queryTimeout: queryTimeout,
		logger:       logger.With("component", "faceindex"),
	}
}

// SearchByImage finds the indexed images that contain the most prominent face of
// image. minSimilarity is a percentage. An image without a face is an error.
func (x *Index) SearchByImage(ctx context.Context, image []byte, indexID string, maxResults int, minSimilarity float64) ([]models.FaceMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	faces, err := x.encoder.Encode(image)
	if err != nil {
		return nil, fmt.Errorf("encode query image: %w", err)
	}

	if x.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.queryTimeout)
		defer cancel()
	}

	matches, err := x.store.SearchFaces(ctx, indexID, faces[0].Embedding, minSimilarity, maxResults)
	if err != nil {
		return nil, fmt.Errorf("query index %s: %w", indexID, err)
	}

	x.logger.Debug("face index queried",
		"index_id", indexID,
		"faces_in_query", len(faces),
		"matches", len(matches),
	)
	return matches, nil
}

// IndexImage stores every face of an event photo under (indexID, imageID), replacing
// any earlier entry. A photo without faces clears the entry and reports zero faces.
func (x *Index) IndexImage(ctx context.Context, indexID, imageID string, image []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	faces, err := x.encoder.Encode(image)
	if err != nil && !errors.Is(err, vision.ErrNoFace) {
		observability.ImagesIndexed.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("encode image %s: %w", imageID, err)
	}

	vectors := make([]storage.FaceVector, 0, len(faces))
	for _, f := range faces {
		vectors = append(vectors, storage.FaceVector{Embedding: f.Embedding, Confidence: f.Confidence})
	}
	if err := x.store.ReplaceFaces(ctx, indexID, imageID, vectors); err != nil {
		observability.ImagesIndexed.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("store faces of %s: %w", imageID, err)
	}

	result := "indexed"
	if len(vectors) == 0 {
		result = "no_face"
	}
	observability.ImagesIndexed.WithLabelValues(result).Inc()
	observability.FacesIndexed.Add(float64(len(vectors)))
	return len(vectors), nil
}
