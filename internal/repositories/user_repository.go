package repositories

import (
	"context"

	"github.com/ayase/tomodachi/internal/entities"
)

// UserRepository defines read-only access to user profiles.
// Users are owned by the external auth system; the engine never writes them.
type UserRepository interface {
	// GetByID retrieves a user by ID, or nil if not found
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByIDs retrieves the users for the given IDs, keyed by ID.
	// Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error)

	// ListOthers retrieves all users except the given one
	ListOthers(ctx context.Context, excludeID string) ([]*entities.User, error)
}
