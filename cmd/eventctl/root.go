package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/your-org/eventface/internal/config"
	"github.com/your-org/eventface/internal/matching"
	"github.com/your-org/eventface/internal/observability"
	"github.com/your-org/eventface/internal/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "eventctl",
	Short: "Operate the eventface catalog and face index",
	Long: `eventctl runs maintenance tasks against the eventface stores: schema
migrations, re-queueing event images for face indexing and one-off
attendee match lookups.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig reads the config and sends logs to stderr so stdout stays parseable.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, cfg.Logging.Level, "text"))
	return cfg, nil
}

// catalogHandle is the configured event catalog and its release func.
type catalogHandle struct {
	matching.CatalogReader
	close func()
}

// openCatalog returns the configured catalog. With the postgres driver db is
// reused and stays owned by the caller.
func openCatalog(ctx context.Context, cfg *config.Config, db *storage.PostgresStore) (*catalogHandle, error) {
	if cfg.Catalog.Driver != config.CatalogMongo {
		return &catalogHandle{CatalogReader: db, close: func() {}}, nil
	}

	c, err := storage.NewMongoCatalog(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	return &catalogHandle{
		CatalogReader: c,
		close: func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = c.Close(closeCtx)
		},
	}, nil
}
