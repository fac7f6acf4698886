package repositories

import (
	"context"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
)

// RelationshipFilter defines filter criteria for querying relationships
type RelationshipFilter struct {
	InvolvingUserID string                      // Match rows with this user on either side (optional)
	RequesterID     string                      // Filter by requester (optional)
	AddresseeID     string                      // Filter by addressee (optional)
	Status          entities.RelationshipStatus // Filter by status (optional)
	CreatedAfter    time.Time                   // Only rows strictly newer than this (optional)
}

// RelationshipRepository defines the interface for relationship data access.
// An empty result is never an error; store failures surface as transport errors.
type RelationshipRepository interface {
	// Create inserts a new relationship row.
	// Returns a conflict error if a row already exists between the pair in
	// either direction (backed by a unique index on the normalized pair).
	Create(ctx context.Context, rel *entities.Relationship) error

	// GetByPair retrieves the single row linking the two users in either
	// direction, or nil if none exists.
	GetByPair(ctx context.Context, userA, userB string) (*entities.Relationship, error)

	// List retrieves relationship rows matching the filter
	List(ctx context.Context, filter *RelationshipFilter) ([]*entities.Relationship, error)

	// UpdateStatus transitions a row's status and refreshes its timestamp
	UpdateStatus(ctx context.Context, id string, status entities.RelationshipStatus, at time.Time) error

	// Delete removes a relationship row
	Delete(ctx context.Context, id string) error
}
