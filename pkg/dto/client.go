package dto

import "github.com/google/uuid"

type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	LogoURL string `json:"logo_url" binding:"required"`
}

type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logo_url"`
	CreatedAt string    `json:"created_at,omitempty"`
}
