package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/your-org/eventface/internal/indexer"
	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/internal/queue"
	"github.com/your-org/eventface/internal/storage"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Queue event images for face indexing",
	Long: `Publish one index task per catalog image. Workers replace the faces
stored for each image, so running this twice is harmless.

Examples:
  # Re-queue every image of every event
  eventctl reindex

  # Only one event
  eventctl reindex --event 6ba7b810-9dad-11d1-80b4-00c04fd430c8

  # JSON output for scripting
  eventctl reindex --json`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)

	reindexCmd.Flags().String("event", "", "Only queue images of this event id")
	reindexCmd.Flags().Bool("json", false, "Output as JSON instead of progress bar")
}

// ReindexResult summarises a reindex run.
type ReindexResult struct {
	Success    bool   `json:"success"`
	Events     int    `json:"events"`
	Images     int    `json:"images"`
	Queued     int    `json:"queued"`
	Skipped    int    `json:"skipped"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func runReindex(cmd *cobra.Command, args []string) error {
	eventFilter := mustGetString(cmd, "event")
	jsonOutput := mustGetBool(cmd, "json")

	var onlyEvent uuid.UUID
	if eventFilter != "" {
		id, err := uuid.Parse(eventFilter)
		if err != nil {
			return fmt.Errorf("invalid event id %q: %w", eventFilter, err)
		}
		onlyEvent = id
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	startTime := time.Now()

	db, err := storage.NewPostgresStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close()

	catalog, err := openCatalog(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer catalog.close()

	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(ctx); err != nil {
		return err
	}

	events, err := catalog.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	result := ReindexResult{}
	var tasks []models.IndexTask
	for i := range events {
		if onlyEvent != uuid.Nil && events[i].ID != onlyEvent {
			continue
		}
		result.Events++
		tasks = append(tasks, indexer.Tasks(cfg.FaceIndex.IndexID, events[i].ID, events[i].Collections)...)
	}
	result.Images = len(tasks)
	indexer.WithRunID(tasks, uuid.NewString())

	if onlyEvent != uuid.Nil && result.Events == 0 {
		return fmt.Errorf("event %s: %w", onlyEvent, models.ErrNotFound)
	}

	var progress func()
	if !jsonOutput {
		fmt.Printf("Queueing %d images from %d events...\n", result.Images, result.Events)
		bar := progressbar.NewOptions(len(tasks),
			progressbar.OptionSetDescription("Queueing"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		progress = func() { _ = bar.Add(1) }
		defer bar.Finish()
	}

	queued, err := indexer.Enqueue(ctx, producer, tasks, progress)
	result.Queued = queued
	if err == nil {
		result.Skipped = len(tasks) - queued
	}
	result.Success = err == nil
	result.DurationMs = time.Since(startTime).Milliseconds()
	if err != nil {
		result.Error = err.Error()
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("queued %d of %d images: %w", queued, len(tasks), err)
	}
	fmt.Printf("\nQueued %d images in %s", queued, time.Since(startTime).Round(time.Millisecond))
	if result.Skipped > 0 {
		fmt.Printf(" (%d already queued)", result.Skipped)
	}
	fmt.Println()
	return nil
}
