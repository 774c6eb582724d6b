package matching

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/internal/observability"
)

// ProfileResolver looks up an attendee's stored profile image reference.
// It returns an error wrapping models.ErrNotFound when there is none.
type ProfileResolver interface {
	ResolveProfileImage(ctx context.Context, attendeeID uuid.UUID) (string, error)
}

// BlobFetcher returns the bytes stored at a reference.
type BlobFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FaceSearcher queries the face index with a photo.
type FaceSearcher interface {
	SearchByImage(ctx context.Context, image []byte, indexID string, maxResults int, minSimilarity float64) ([]models.FaceMatch, error)
}

// CatalogReader returns every event with its full collection tree, in scan order.
type CatalogReader interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// SearchOptions are the fixed face-index parameters used for every request.
type SearchOptions struct {
	IndexID       string
	MaxResults    int
	MinSimilarity float64
}

// DefaultSearchOptions returns the stock index parameters: 4096 results at 80% similarity.
func DefaultSearchOptions(indexID string) SearchOptions {
	return SearchOptions{IndexID: indexID, MaxResults: 4096, MinSimilarity: 80}
}

// Result is the outcome of a successful match request.
type Result struct {
	AttendeeID    uuid.UUID    `json:"attendeeId"`
	MatchedEvents []EventMatch `json:"matchedEvents"`
}

// Service runs the match pipeline: profile -> image bytes -> (face search || catalog scan) -> correlation.
type Service struct {
	profiles ProfileResolver
	blobs    BlobFetcher
	index    FaceSearcher
	catalog  CatalogReader
	opts     SearchOptions
	logger   *slog.Logger
}

func NewService(profiles ProfileResolver, blobs BlobFetcher, index FaceSearcher, catalog CatalogReader, opts SearchOptions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		profiles: profiles,
		blobs:    blobs,
		index:    index,
		catalog:  catalog,
		opts:     opts,
		logger:   logger.With("component", "matching"),
	}
}

// FindMatches returns, for every event, the collections and images in which the attendee
// appears. Failures carry one of the Err* kinds and nothing partial is returned.
// An empty face-index result is not a failure: it yields no matched events.
func (s *Service) FindMatches(ctx context.Context, attendeeID uuid.UUID) (*Result, error) {
	start := time.Now()
	id := attendeeID.String()
	log := s.logger.With("attendee_id", id)

	result, err := s.findMatches(ctx, attendeeID, log)
	outcome := "ok"
	if err != nil {
		outcome = outcomeLabel(err)
		var se *StageError
		if errors.As(err, &se) {
			log.Error("match request failed", "stage", se.Stage, "error", se.Err)
		}
	} else {
		observability.MatchedEvents.Observe(float64(len(result.MatchedEvents)))
		log.Info("match request completed",
			"matched_events", len(result.MatchedEvents),
			"duration", time.Since(start).String(),
		)
	}
	observability.MatchRequests.WithLabelValues(outcome).Inc()
	return result, err
}

func (s *Service) findMatches(ctx context.Context, attendeeID uuid.UUID, log *slog.Logger) (*Result, error) {
	id := attendeeID.String()

	stageStart := time.Now()
	ref, err := s.profiles.ResolveProfileImage(ctx, attendeeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, stageError(StageResolveProfile, id, ErrPersonNotFound, err)
		}
		return nil, stageError(StageResolveProfile, id, ErrCatalogReadFailed, err)
	}
	observeStage(StageResolveProfile, stageStart)

	stageStart = time.Now()
	image, err := s.blobs.Fetch(ctx, ref)
	if err != nil {
		return nil, stageError(StageFetchImage, id, ErrUnreachableContent, err)
	}
	observeStage(StageFetchImage, stageStart)
	log.Debug("profile image fetched", "ref", ref, "bytes", len(image))

	var (
		matches []models.FaceMatch
		events  []models.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stageStart := time.Now()
		m, err := s.index.SearchByImage(gctx, image, s.opts.IndexID, s.opts.MaxResults, s.opts.MinSimilarity)
		if err != nil {
			return stageError(StageSearchIndex, id, ErrIndexQueryFailed, err)
		}
		observeStage(StageSearchIndex, stageStart)
		matches = m
		return nil
	})
	g.Go(func() error {
		stageStart := time.Now()
		evs, err := s.catalog.ListEvents(gctx)
		if err != nil {
			return stageError(StageListEvents, id, ErrCatalogReadFailed, err)
		}
		observeStage(StageListEvents, stageStart)
		events = evs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug("face index searched", "matches", len(matches), "events", len(events))

	return &Result{
		AttendeeID:    attendeeID,
		MatchedEvents: Correlate(NewImageSet(matches), events),
	}, nil
}

func observeStage(stage string, start time.Time) {
	observability.MatchStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func outcomeLabel(err error) string {
	switch Kind(err) {
	case ErrPersonNotFound:
		return "person_not_found"
	case ErrUnreachableContent:
		return "unreachable_content"
	case ErrIndexQueryFailed:
		return "index_query_failed"
	case ErrCatalogReadFailed:
		return "catalog_read_failed"
	default:
		return "error"
	}
}
