package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/your-org/eventface/internal/faceindex"
	"github.com/your-org/eventface/internal/matching"
	"github.com/your-org/eventface/internal/storage"
	"github.com/your-org/eventface/internal/vision"
)

var matchCmd = &cobra.Command{
	Use:   "match <attendee-id>",
	Short: "Find the event photos an attendee appears in",
	Long: `Run the match pipeline for one attendee and print the result as JSON.

Examples:
  eventctl match 0f8fad5b-d9cb-469f-a165-70867728950e

  # Override the similarity threshold for this run
  eventctl match 0f8fad5b-d9cb-469f-a165-70867728950e --min-similarity 90`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Float64("min-similarity", 0, "Minimum face similarity in percent (default from config)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	attendeeID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid attendee id %q: %w", args[0], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	minSimilarity, err := cmd.Flags().GetFloat64("min-similarity")
	if err != nil {
		return err
	}
	if minSimilarity == 0 {
		minSimilarity = cfg.FaceIndex.MinSimilarity
	}

	ctx := context.Background()

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

	blobs, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("connect to minio: %w", err)
	}

	if err := vision.InitRuntime(cfg.Vision.ONNXLibrary); err != nil {
		return err
	}
	defer vision.DestroyRuntime()

	encoder, err := vision.NewFaceEncoder(cfg.Vision)
	if err != nil {
		return err
	}
	defer encoder.Close()

	logger := slog.Default()
	index := faceindex.New(encoder, db, cfg.FaceIndex.QueryTimeout, logger)
	svc := matching.NewService(db, blobs, index, catalog, matching.SearchOptions{
		IndexID:       cfg.FaceIndex.IndexID,
		MaxResults:    cfg.FaceIndex.MaxResults,
		MinSimilarity: minSimilarity,
	}, logger)

	res, err := svc.FindMatches(ctx, attendeeID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
