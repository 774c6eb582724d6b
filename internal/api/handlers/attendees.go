package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/eventface/internal/matching"
	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/pkg/dto"
)

type AttendeeHandler struct {
	store   AttendeeStore
	blobs   BlobStore
	matcher Matcher
}

func NewAttendeeHandler(store AttendeeStore, blobs BlobStore, matcher Matcher) *AttendeeHandler {
	return &AttendeeHandler{store: store, blobs: blobs, matcher: matcher}
}

// Create registers an attendee. Multipart requests may carry an "image" file that
// becomes the profile image; JSON requests pass an existing profile_image reference.
func (h *AttendeeHandler) Create(c *gin.Context) {
	var req dto.CreateAttendeeRequest
	multipartForm := c.ContentType() == gin.MIMEMultipartPOSTForm
	if multipartForm {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a := &models.Attendee{
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		ProfileImage: req.ProfileImage,
	}
	if errs := models.ValidateAttendee(a); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": errs})
		return
	}

	uploaded := ""
	if multipartForm {
		if header, err := c.FormFile("image"); err == nil {
			key, err := storeImage(c.Request.Context(), h.blobs, FolderProfiles, header)
			if err != nil {
				writeImageError(c, err)
				return
			}
			a.ProfileImage = key
			uploaded = key
		}
	}

	if err := h.store.CreateAttendee(c.Request.Context(), a); err != nil {
		if uploaded != "" {
			if derr := h.blobs.DeleteObject(c.Request.Context(), uploaded); derr != nil {
				slog.Warn("remove orphaned profile image", "key", uploaded, "error", derr)
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, attendeeResponse(a))
}

func (h *AttendeeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attendee id"})
		return
	}

	a, err := h.store.GetAttendee(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attendee not found"})
		return
	}

	c.JSON(http.StatusOK, attendeeResponse(a))
}

// Matches returns every event collection containing the attendee's face.
// Failures only expose the error kind, never collaborator detail.
func (h *AttendeeHandler) Matches(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attendee id"})
		return
	}

	res, err := h.matcher.FindMatches(c.Request.Context(), id)
	if err != nil {
		kind := matching.Kind(err)
		c.JSON(matchErrorStatus(kind), gin.H{"error": matchErrorMessage(kind)})
		return
	}

	c.JSON(http.StatusOK, matchResponse(res))
}

func matchErrorStatus(kind error) int {
	switch {
	case errors.Is(kind, matching.ErrPersonNotFound):
		return http.StatusNotFound
	case errors.Is(kind, matching.ErrUnreachableContent), errors.Is(kind, matching.ErrIndexQueryFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func matchErrorMessage(kind error) string {
	if kind == nil {
		return "match request failed"
	}
	return kind.Error()
}

func matchResponse(res *matching.Result) dto.MatchResponse {
	events := make([]dto.MatchedEvent, 0, len(res.MatchedEvents))
	for _, em := range res.MatchedEvents {
		cols := make([]dto.MatchedCollection, 0, len(em.Collections))
		for _, cm := range em.Collections {
			cols = append(cols, dto.MatchedCollection{CollectionName: cm.CollectionName, Images: cm.Images})
		}
		events = append(events, dto.MatchedEvent{EventName: em.EventName, Collections: cols})
	}
	return dto.MatchResponse{AttendeeID: res.AttendeeID, MatchedEvents: events}
}

func attendeeResponse(a *models.Attendee) dto.AttendeeResponse {
	return dto.AttendeeResponse{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PhoneNumber:  a.PhoneNumber,
		ProfileImage: a.ProfileImage,
		CreatedAt:    a.CreatedAt.Format(timeFormat),
	}
}
