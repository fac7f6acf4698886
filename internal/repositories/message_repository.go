package repositories

import (
	"context"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
)

// MessageRepository defines the interface for direct-message data access.
// Messages are append-only; there is no update or delete.
type MessageRepository interface {
	// Create inserts a new message
	Create(ctx context.Context, msg *entities.Message) error

	// ListBetween retrieves all messages exchanged between the two users,
	// ordered oldest first (normal chat order).
	ListBetween(ctx context.Context, userA, userB string) ([]*entities.Message, error)

	// CountReceivedSince counts messages addressed to receiverID sent
	// strictly after since.
	CountReceivedSince(ctx context.Context, receiverID string, since time.Time) (int, error)

	// CountReceivedFromSince counts messages from senderID to receiverID
	// sent strictly after since.
	CountReceivedFromSince(ctx context.Context, receiverID, senderID string, since time.Time) (int, error)

	// LatestBetween retrieves the most recent message exchanged between the
	// two users, or nil if they have never messaged.
	LatestBetween(ctx context.Context, userA, userB string) (*entities.Message, error)
}
