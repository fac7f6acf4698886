package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/pkg/apperrors"
)

// PostgresMessageRepository implements MessageRepository using PostgreSQL
type PostgresMessageRepository struct {
	db *sql.DB
}

// NewPostgresMessageRepository creates a new PostgreSQL message repository
func NewPostgresMessageRepository(db *sql.DB) repositories.MessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Create inserts a new message
func (r *PostgresMessageRepository) Create(ctx context.Context, msg *entities.Message) error {
	if err := msg.Validate(); err != nil {
		return apperrors.InvalidArgument(err.Error())
	}

	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.SentAt)
	if err != nil {
		return apperrors.Transport("failed to create message", err)
	}

	return nil
}

// ListBetween retrieves all messages exchanged between the two users,
// ordered oldest first
func (r *PostgresMessageRepository) ListBetween(ctx context.Context, userA, userB string) ([]*entities.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, sent_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_at ASC, id
	`
	rows, err := r.db.QueryContext(ctx, query, userA, userB)
	if err != nil {
		return nil, apperrors.Transport("failed to list messages", err)
	}
	defer rows.Close()

	var msgs []*entities.Message
	for rows.Next() {
		var msg entities.Message
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.SentAt); err != nil {
			return nil, apperrors.Transport("failed to scan message", err)
		}
		msgs = append(msgs, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transport("error iterating messages", err)
	}

	return msgs, nil
}

// CountReceivedSince counts messages addressed to receiverID sent strictly after since
func (r *PostgresMessageRepository) CountReceivedSince(ctx context.Context, receiverID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE receiver_id = $1 AND sent_at > $2
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, receiverID, since).Scan(&count); err != nil {
		return 0, apperrors.Transport("failed to count received messages", err)
	}

	return count, nil
}

// CountReceivedFromSince counts messages from senderID to receiverID sent
// strictly after since
func (r *PostgresMessageRepository) CountReceivedFromSince(ctx context.Context, receiverID, senderID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE receiver_id = $1 AND sender_id = $2 AND sent_at > $3
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, receiverID, senderID, since).Scan(&count); err != nil {
		return 0, apperrors.Transport("failed to count received messages from sender", err)
	}

	return count, nil
}

// LatestBetween retrieves the most recent message exchanged between the two
// users, or nil if they have never messaged
func (r *PostgresMessageRepository) LatestBetween(ctx context.Context, userA, userB string) (*entities.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, sent_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_at DESC, id DESC
		LIMIT 1
	`
	var msg entities.Message
	err := r.db.QueryRowContext(ctx, query, userA, userB).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.SentAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Transport("failed to get latest message", err)
	}

	return &msg, nil
}
