package repositories

import (
	"context"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
)

// WatermarkRepository defines the interface for per-user watermark data access
type WatermarkRepository interface {
	// GetOrInit retrieves the user's watermark row, creating it with both
	// channels at the Unix epoch if it does not exist. Creation is an upsert
	// keyed by user_id, so concurrent first reads never produce duplicates.
	GetOrInit(ctx context.Context, userID string) (*entities.Watermark, error)

	// Advance moves the named channel's watermark forward to ts.
	// A ts at or behind the current value is a no-op; watermarks never move
	// backward.
	Advance(ctx context.Context, userID string, channel entities.Channel, ts time.Time) error
}
