package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Attendee is the person a match request is made for.
type Attendee struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email,omitempty" db:"email"`
	PhoneNumber  string    `json:"phone_number,omitempty" db:"phone_number"`
	ProfileImage string    `json:"profile_image,omitempty" db:"profile_image"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
)

// FieldError is a single failed attendee field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Msg }

// ValidateAttendee reports every problem with a new attendee record.
func ValidateAttendee(a *Attendee) []FieldError {
	var errs []FieldError

	if a.Name == "" {
		errs = append(errs, FieldError{"name", "required"})
	}
	if a.Email == "" && a.PhoneNumber == "" {
		errs = append(errs, FieldError{"email", "at least one of email or phone number is required"})
	}
	if a.Email != "" && !emailPattern.MatchString(a.Email) {
		errs = append(errs, FieldError{"email", a.Email + " is not a valid email"})
	}
	if a.PhoneNumber != "" && !phonePattern.MatchString(a.PhoneNumber) {
		errs = append(errs, FieldError{"phone_number", a.PhoneNumber + " is not a valid phone number"})
	}

	return errs
}
