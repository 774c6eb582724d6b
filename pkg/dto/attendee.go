package dto

import "github.com/google/uuid"

// CreateAttendeeRequest is accepted as JSON or as multipart form fields
// alongside an optional "image" file.
type CreateAttendeeRequest struct {
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	PhoneNumber  string `json:"phone_number" form:"phone_number"`
	ProfileImage string `json:"profile_image" form:"profile_image"`
}

type AttendeeResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    string    `json:"created_at"`
}
