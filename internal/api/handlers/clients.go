package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/eventface/internal/models"
	"github.com/your-org/eventface/pkg/dto"
)

type ClientHandler struct {
	store ClientStore
}

func NewClientHandler(store ClientStore) *ClientHandler {
	return &ClientHandler{store: store}
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.store.CreateClient(c.Request.Context(), req.Name, req.LogoURL)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "client name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, clientResponse(client))
}

func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.store.ListClients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]*dto.ClientResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, clientResponse(&clients[i]))
	}

	c.JSON(http.StatusOK, gin.H{"clients": resp, "total": len(resp)})
}
