// Package store provides durable per-user template storage.
package store

import (
	"context"
	"strings"
	"time"
)

// UserTemplate is the one template a user keeps. Body holds bracketed
// placeholders such as [Position]; Description is free-text context.
type UserTemplate struct {
	OwnerID     string    `json:"-"`
	Body        string    `json:"body"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Store maps owner ids to templates.
type Store interface {
	// Get returns nil, nil when the owner has no template.
	Get(ctx context.Context, ownerID string) (*UserTemplate, error)
	// Put replaces the owner's template. Body and description are written
	// together or not at all.
	Put(ctx context.Context, ownerID, body, description string) error
	Close() error
}

// validatePut checks arguments shared by every backend.
func validatePut(ownerID, body string) error {
	if strings.TrimSpace(ownerID) == "" {
		return &ValidationError{Field: "owner_id", Message: "must not be empty"}
	}
	if strings.TrimSpace(body) == "" {
		return &ValidationError{Field: "body", Message: "must not be empty"}
	}
	return nil
}
