package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Worker struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	GitHubLink  string    `json:"githubLink"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Normalize trims whitespace from the contact fields
func (w *Worker) Normalize() {
	w.Name = strings.TrimSpace(w.Name)
	w.Email = strings.TrimSpace(w.Email)
	w.PhoneNumber = strings.TrimSpace(w.PhoneNumber)
	w.GitHubLink = strings.TrimSpace(w.GitHubLink)
}

// Validate checks that every contact field is present and the email parses
func (w *Worker) Validate() error {
	if w.Name == "" {
		return MissingField("name")
	}
	if w.Email == "" {
		return MissingField("email")
	}
	if w.PhoneNumber == "" {
		return MissingField("phoneNumber")
	}
	if w.GitHubLink == "" {
		return MissingField("githubLink")
	}
	return ValidateEmail(w.Email)
}

// ValidateEmail rejects addresses that do not parse as a bare address
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("email", "Invalid email address")
	}
	return nil
}

// WorkerUpdate is a partial update; nil fields are left unchanged
type WorkerUpdate struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	GitHubLink  *string `json:"githubLink"`
}

// IsEmpty reports whether the update changes nothing
func (u *WorkerUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.PhoneNumber == nil && u.GitHubLink == nil
}

// Apply copies the set fields onto w and validates the result
func (u *WorkerUpdate) Apply(w *Worker) error {
	if u.Name != nil {
		w.Name = *u.Name
	}
	if u.Email != nil {
		w.Email = *u.Email
	}
	if u.PhoneNumber != nil {
		w.PhoneNumber = *u.PhoneNumber
	}
	if u.GitHubLink != nil {
		w.GitHubLink = *u.GitHubLink
	}
	w.Normalize()
	return w.Validate()
}

// StatusFilter selects rows by soft-delete state in list queries
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusActive  StatusFilter = "active"
	StatusDeleted StatusFilter = "deleted"
)

// ParseStatusFilter maps a query value to a filter, using fallback when empty
func ParseStatusFilter(value string, fallback StatusFilter) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return fallback, nil
	case StatusAll:
		return StatusAll, nil
	case StatusActive:
		return StatusActive, nil
	case StatusDeleted:
		return StatusDeleted, nil
	}
	return "", NewValidationError("status", "status must be one of all, active, deleted")
}
