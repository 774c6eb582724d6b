package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/eventface/internal/indexer"
	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/pkg/dto"
)

type EventHandler struct {
	catalog EventCatalog
	clients ClientStore
	tasks   indexer.TaskPublisher
	indexID string
}

func NewEventHandler(catalog EventCatalog, clients ClientStore, tasks indexer.TaskPublisher, indexID string) *EventHandler {
	return &EventHandler{catalog: catalog, clients: clients, tasks: tasks, indexID: indexID}
}

func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.EndDate.Before(req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must not be before startDate"})
		return
	}

	client, err := h.clients.GetClient(c.Request.Context(), req.ClientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if client == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}

	ev := &models.Event{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		ClientID:  req.ClientID,
	}
	if err := h.catalog.CreateEvent(c.Request.Context(), ev); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "event name already exists"})
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, eventResponse(ev, client))
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.catalog.ListEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	clients, err := h.clients.ListClients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byID := make(map[uuid.UUID]*models.Client, len(clients))
	for i := range clients {
		byID[clients[i].ID] = &clients[i]
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, eventResponse(&events[i], byID[events[i].ClientID]))
	}

	c.JSON(http.StatusOK, gin.H{"events": resp, "total": len(resp)})
}

func (h *EventHandler) Get(c *gin.Context) {
	ev, client, ok := h.loadEvent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, eventResponse(ev, client))
}

// Details is the public view of an event: its client and image counts, no image keys.
func (h *EventHandler) Details(c *gin.Context) {
	ev, client, ok := h.loadEvent(c)
	if !ok {
		return
	}

	summaries := make([]dto.CollectionSummaryResult, 0, ev.CollectionCount())
	for _, group := range ev.Collections {
		for _, col := range group {
			summaries = append(summaries, dto.CollectionSummaryResult{
				Name:       col.Name,
				Folder:     col.Folder,
				ImageCount: len(col.Images),
			})
		}
	}

	c.JSON(http.StatusOK, dto.EventDetailsResponse{
		ID:              ev.ID,
		Name:            ev.Name,
		StartDate:       ev.StartDate.Format(timeFormat),
		EndDate:         ev.EndDate.Format(timeFormat),
		Client:          clientResponse(client),
		CollectionCount: ev.CollectionCount(),
		ImageCount:      ev.ImageCount(),
		Collections:     summaries,
	})
}

// AppendCollections adds one collection group to the event, assigns every image a
// fresh ImageId and queues the new images for face indexing.
func (h *EventHandler) AppendCollections(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req dto.AppendCollectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := h.catalog.GetEvent(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}

	group := buildCollectionGroup(ev.Name, req.Collections)
	if err := h.catalog.AppendCollectionGroup(c.Request.Context(), id, group); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tasks := indexer.Tasks(h.indexID, id, []models.CollectionGroup{group})
	queued, err := indexer.Enqueue(c.Request.Context(), h.tasks, tasks, nil)
	if err != nil {
		slog.Warn("queue index tasks", "event_id", id, "queued", queued, "total", len(tasks), "error", err)
	}

	cols := make([]dto.CollectionResponse, 0, len(group))
	for _, col := range group {
		cols = append(cols, collectionResponse(col))
	}
	c.JSON(http.StatusCreated, dto.AppendCollectionsResponse{EventID: id, Collections: cols, Queued: queued})
}

func (h *EventHandler) loadEvent(c *gin.Context) (*models.Event, *models.Client, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return nil, nil, false
	}

	ev, err := h.catalog.GetEvent(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	if ev == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return nil, nil, false
	}

	client, err := h.clients.GetClient(c.Request.Context(), ev.ClientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return ev, client, true
}

func buildCollectionGroup(eventName string, reqs []dto.CollectionRequest) models.CollectionGroup {
	group := make(models.CollectionGroup, 0, len(reqs))
	for _, r := range reqs {
		folder := r.Folder
		if folder == "" {
			folder = models.CollectionFolder(eventName, r.Name)
		}
		images := make([]models.Image, 0, len(r.Images))
		for _, img := range r.Images {
			images = append(images, models.Image{ImageID: uuid.NewString(), SourceKey: img.SourceKey})
		}
		group = append(group, models.Collection{Name: r.Name, Folder: folder, Images: images})
	}
	return group
}
