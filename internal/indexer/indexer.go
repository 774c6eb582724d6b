// Package indexer keeps the face index in step with the event catalog.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/internal/queue"
)

type BlobFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

type ImageIndexer interface {
	IndexImage(ctx context.Context, indexID, imageID string, image []byte) (int, error)
}

type ResultPublisher interface {
	PublishIndexResult(ctx context.Context, result models.IndexResult) error
}

type TaskPublisher interface {
	PublishIndexTask(ctx context.Context, task models.IndexTask) error
}

// Worker indexes one event image per task.
type Worker struct {
	blobs   BlobFetcher
	index   ImageIndexer
	results ResultPublisher
	logger  *slog.Logger
}

func NewWorker(blobs BlobFetcher, index ImageIndexer, results ResultPublisher, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{blobs: blobs, index: index, results: results, logger: logger.With("component", "indexer")}
}

// Handle fetches the task's image, indexes its faces and announces the result.
// A missing image is permanent and is not retried.
func (w *Worker) Handle(ctx context.Context, task models.IndexTask) error {
	data, err := w.blobs.Fetch(ctx, task.SourceKey)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: fetch %s: %w", queue.ErrPermanent, task.SourceKey, err)
		}
		return fmt.Errorf("fetch %s: %w", task.SourceKey, err)
	}

	faces, err := w.index.IndexImage(ctx, task.IndexID, task.ImageID, data)
	if err != nil {
		return err
	}

	w.logger.Info("image indexed",
		"event_id", task.EventID,
		"image_id", task.ImageID,
		"faces", faces,
	)

	result := models.IndexResult{
		EventID:   task.EventID,
		ImageID:   task.ImageID,
		SourceKey: task.SourceKey,
		Faces:     faces,
		IndexedAt: time.Now().UTC(),
	}
	if err := w.results.PublishIndexResult(ctx, result); err != nil {
		w.logger.Warn("publish index result", "image_id", task.ImageID, "error", err)
	}
	return nil
}

// Tasks lists one index task per image of the given collection groups.
func Tasks(indexID string, eventID uuid.UUID, groups []models.CollectionGroup) []models.IndexTask {
	var tasks []models.IndexTask
	for _, group := range groups {
		for _, col := range group {
			for _, img := range col.Images {
				tasks = append(tasks, models.IndexTask{
					IndexID:   indexID,
					EventID:   eventID,
					ImageID:   img.ImageID,
					SourceKey: img.SourceKey,
				})
			}
		}
	}
	return tasks
}

// Enqueue publishes tasks in order and stops at the first failure. It returns
// how many tasks the queue accepted; tasks the server dropped as duplicates are
// skipped and not counted. progress, if set, is called after every task.
func Enqueue(ctx context.Context, pub TaskPublisher, tasks []models.IndexTask, progress func()) (int, error) {
	queued := 0
	for _, task := range tasks {
		err := pub.PublishIndexTask(ctx, task)
		switch {
		case errors.Is(err, queue.ErrDuplicateTask):
		case err != nil:
			return queued, err
		default:
			queued++
		}
		if progress != nil {
			progress()
		}
	}
	return queued, nil
}

// WithRunID stamps every task with runID so a reindex pass is not deduplicated
// against earlier publishes of the same images.
func WithRunID(tasks []models.IndexTask, runID string) []models.IndexTask {
	for i := range tasks {
		tasks[i].RunID = runID
	}
	return tasks
}
