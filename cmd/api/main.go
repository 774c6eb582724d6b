package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/eventface/internal/api"
	"github.com/your-org/eventface/internal/api/handlers"
	"github.com/your-org/eventface/internal/api/ws"
	"github.com/your-org/eventface/internal/auth"
	"github.com/your-org/eventface/internal/config"
	"github.com/your-org/eventface/internal/faceindex"
	"github.com/your-org/eventface/internal/matching"
	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/internal/observability"
	"github.com/your-org/eventface/internal/queue"
	"github.com/your-org/eventface/internal/storage"
	"github.com/your-org/eventface/internal/vision"
)

// catalogStore is the event catalog plus its health check.
type catalogStore interface {
	handlers.EventCatalog
	Ping(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	gin.SetMode(gin.ReleaseMode)

	slog.Info("starting eventface API", "port", cfg.Server.Port, "catalog", cfg.Catalog.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres holds clients, attendees and the face index, and the catalog by default.
	db, err := storage.NewPostgresStore(ctx, cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	if err != nil {
		slog.Error("migrate postgres", "error", err)
		os.Exit(1)
	}
	if len(applied) > 0 {
		slog.Info("migrations applied", "files", applied)
	}

	var catalog catalogStore = db
	if cfg.Catalog.Driver == config.CatalogMongo {
		mongoCatalog, err := storage.NewMongoCatalog(ctx, cfg.Mongo)
		if err != nil {
			slog.Error("connect to mongo", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			_ = mongoCatalog.Close(closeCtx)
		}()
		catalog = mongoCatalog
	}

	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(ctx); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(ctx); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	if err := vision.InitRuntime(cfg.Vision.ONNXLibrary); err != nil {
		slog.Error("init onnx runtime", "error", err)
		os.Exit(1)
	}
	defer vision.DestroyRuntime()

	encoder, err := vision.NewFaceEncoder(cfg.Vision)
	if err != nil {
		slog.Error("load face models", "error", err)
		os.Exit(1)
	}
	defer encoder.Close()

	index := faceindex.New(encoder, db, cfg.FaceIndex.QueryTimeout, logger)
	matcher := matching.NewService(db, minioStore, index, catalog, matching.SearchOptions{
		IndexID:       cfg.FaceIndex.IndexID,
		MaxResults:    cfg.FaceIndex.MaxResults,
		MinSimilarity: cfg.FaceIndex.MinSimilarity,
	}, logger)

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create index result consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	// Each API replica gets its own durable so every one sees every result.
	host, _ := os.Hostname()
	err = consumer.ConsumeIndexResults(ctx, "api-indexed-"+host, func(ctx context.Context, result models.IndexResult) error {
		hub.BroadcastIndexed(result)
		return nil
	})
	if err != nil {
		slog.Warn("start index result consumer", "error", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Auth: auth.Options{
			APIKey:      cfg.Server.APIKey,
			JWTSecret:   cfg.Server.JWTSecret,
			JWTAudience: cfg.Server.JWTAudience,
		},
		Attendees: db,
		Clients:   db,
		Catalog:   catalog,
		Blobs:     minioStore,
		Tasks:     producer,
		Matcher:   matcher,
		Hub:       hub,
		IndexID:   cfg.FaceIndex.IndexID,
		Checks: []handlers.HealthCheck{
			{Name: "postgres", Ping: db.Ping},
			{Name: "catalog", Ping: catalog.Ping},
			{Name: "minio", Ping: minioStore.Ping},
			{Name: "nats", Ping: func(context.Context) error { return producer.Ping() }},
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
