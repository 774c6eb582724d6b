package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/eventface/internal/api/handlers"
	"github.com/your-org/eventface/internal/api/ws"
	"github.com/your-org/eventface/internal/auth"
	"github.com/your-org/eventface/internal/indexer"
)

type RouterConfig struct {
	Auth      auth.Options
	Attendees handlers.AttendeeStore
	Clients   handlers.ClientStore
	Catalog   handlers.EventCatalog
	Blobs     handlers.BlobStore
	Tasks     indexer.TaskPublisher
	Matcher   handlers.Matcher
	Hub       *ws.Hub
	// IndexID is the face index new event images are queued into.
	IndexID string
	Checks  []handlers.HealthCheck
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.Checks...)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	attendeeH := handlers.NewAttendeeHandler(cfg.Attendees, cfg.Blobs, cfg.Matcher)
	eventH := handlers.NewEventHandler(cfg.Catalog, cfg.Clients, cfg.Tasks, cfg.IndexID)

	// Public attendee flow
	public := r.Group("/v1")
	public.POST("/attendees", attendeeH.Create)
	public.GET("/attendees/:id/matches", attendeeH.Matches)
	public.GET("/events/:id/details", eventH.Details)

	// Management API
	v1 := r.Group("/v1")
	v1.Use(auth.Middleware(cfg.Auth))

	if cfg.Hub != nil {
		v1.GET("/ws", cfg.Hub.HandleWS)
	}

	v1.GET("/attendees/:id", attendeeH.Get)

	clientH := handlers.NewClientHandler(cfg.Clients)
	v1.POST("/clients", clientH.Create)
	v1.GET("/clients", clientH.List)

	v1.POST("/events", eventH.Create)
	v1.GET("/events", eventH.List)
	v1.GET("/events/:id", eventH.Get)
	v1.POST("/events/:id/collections", eventH.AppendCollections)

	uploadH := handlers.NewUploadHandler(cfg.Blobs)
	v1.POST("/uploads", uploadH.Upload)

	return r
}
