package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/your-org/eventface/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compare catalog size with the face index",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	events, err := catalog.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	images := 0
	for i := range events {
		images += events[i].ImageCount()
	}

	indexed, err := db.CountIndexedImages(ctx, cfg.FaceIndex.IndexID)
	if err != nil {
		return err
	}

	fmt.Printf("Catalog:    %s\n", cfg.Catalog.Driver)
	fmt.Printf("Events:     %d\n", len(events))
	fmt.Printf("Images:     %d\n", images)
	fmt.Printf("Face index: %s (%d images with faces)\n", cfg.FaceIndex.IndexID, indexed)
	return nil
}
