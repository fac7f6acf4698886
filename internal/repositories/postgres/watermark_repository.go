package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/pkg/apperrors"
)

// PostgresWatermarkRepository implements WatermarkRepository using PostgreSQL
type PostgresWatermarkRepository struct {
	db *sql.DB
}

// NewPostgresWatermarkRepository creates a new PostgreSQL watermark repository
func NewPostgresWatermarkRepository(db *sql.DB) repositories.WatermarkRepository {
	return &PostgresWatermarkRepository{db: db}
}

// GetOrInit retrieves the user's watermark row, creating it with both
// channels at the Unix epoch if it does not exist.
// The insert is ON CONFLICT DO NOTHING keyed by user_id, so two concurrent
// first reads race harmlessly: one row wins, both callers read it back.
func (r *PostgresWatermarkRepository) GetOrInit(ctx context.Context, userID string) (*entities.Watermark, error) {
	if userID == "" {
		return nil, apperrors.InvalidArgument("user ID is required")
	}

	insert := `
		INSERT INTO watermarks (user_id, last_checked_notifications, last_checked_messages)
		VALUES ($1, to_timestamp(0), to_timestamp(0))
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, userID); err != nil {
		return nil, apperrors.Transport("failed to initialize watermark", err)
	}

	query := `
		SELECT user_id, last_checked_notifications, last_checked_messages
		FROM watermarks
		WHERE user_id = $1
	`
	var wm entities.Watermark
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&wm.UserID, &wm.Notifications, &wm.Messages)
	if err != nil {
		return nil, apperrors.Transport("failed to get watermark", err)
	}

	return &wm, nil
}

// Advance moves the named channel's watermark forward to ts.
// GREATEST keeps the advance monotonic even when a slow request lands after
// a faster one; a stale ts is a no-op.
func (r *PostgresWatermarkRepository) Advance(ctx context.Context, userID string, channel entities.Channel, ts time.Time) error {
	if userID == "" {
		return apperrors.InvalidArgument("user ID is required")
	}
	if !channel.Valid() {
		return apperrors.InvalidArgument(fmt.Sprintf("unknown channel: %s", channel))
	}

	column := "last_checked_notifications"
	other := "last_checked_messages"
	if channel == entities.ChannelMessages {
		column, other = other, column
	}

	// On first write the row is created with ts in the target channel and
	// epoch in the other, so a user whose first action is an advance still
	// gets a complete row.
	query := fmt.Sprintf(`
		INSERT INTO watermarks (user_id, %s, %s)
		VALUES ($1, $2, to_timestamp(0))
		ON CONFLICT (user_id) DO UPDATE
		SET %s = GREATEST(watermarks.%s, $2)
	`, column, other, column, column)

	if _, err := r.db.ExecContext(ctx, query, userID, ts); err != nil {
		return apperrors.Transport("failed to advance watermark", err)
	}

	return nil
}
