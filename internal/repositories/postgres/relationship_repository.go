package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/pkg/apperrors"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// PostgresRelationshipRepository implements RelationshipRepository using PostgreSQL
type PostgresRelationshipRepository struct {
	db *sql.DB
}

// NewPostgresRelationshipRepository creates a new PostgreSQL relationship repository
func NewPostgresRelationshipRepository(db *sql.DB) repositories.RelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

// Create inserts a new relationship row.
// The relationships table carries a unique index on
// (LEAST(requester_id, addressee_id), GREATEST(requester_id, addressee_id)),
// so a concurrent insert from the other direction loses with a unique
// violation, which is surfaced as a conflict error rather than a crash.
func (r *PostgresRelationshipRepository) Create(ctx context.Context, rel *entities.Relationship) error {
	if err := rel.Validate(); err != nil {
		return apperrors.InvalidArgument(err.Error())
	}

	query := `
		INSERT INTO relationships (id, requester_id, addressee_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID, rel.RequesterID, rel.AddresseeID, rel.Status, rel.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return apperrors.Conflict("relationship already exists between these users")
		}
		return apperrors.Transport("failed to create relationship", err)
	}

	return nil
}

// GetByPair retrieves the single row linking the two users in either direction
func (r *PostgresRelationshipRepository) GetByPair(ctx context.Context, userA, userB string) (*entities.Relationship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at
		FROM relationships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`
	var rel entities.Relationship
	err := r.db.QueryRowContext(ctx, query, userA, userB).Scan(
		&rel.ID, &rel.RequesterID, &rel.AddresseeID, &rel.Status, &rel.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Transport("failed to get relationship by pair", err)
	}

	return &rel, nil
}

// List retrieves relationship rows matching the filter
func (r *PostgresRelationshipRepository) List(ctx context.Context, filter *repositories.RelationshipFilter) ([]*entities.Relationship, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, created_at
		FROM relationships
		WHERE 1 = 1
	`
	args := []interface{}{}
	argIdx := 1

	// Build dynamic WHERE clause based on filter
	if filter != nil {
		if filter.InvolvingUserID != "" {
			query += fmt.Sprintf(" AND (requester_id = $%d OR addressee_id = $%d)", argIdx, argIdx)
			args = append(args, filter.InvolvingUserID)
			argIdx++
		}
		if filter.RequesterID != "" {
			query += fmt.Sprintf(" AND requester_id = $%d", argIdx)
			args = append(args, filter.RequesterID)
			argIdx++
		}
		if filter.AddresseeID != "" {
			query += fmt.Sprintf(" AND addressee_id = $%d", argIdx)
			args = append(args, filter.AddresseeID)
			argIdx++
		}
		if filter.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argIdx)
			args = append(args, filter.Status)
			argIdx++
		}
		if !filter.CreatedAfter.IsZero() {
			query += fmt.Sprintf(" AND created_at > $%d", argIdx)
			args = append(args, filter.CreatedAfter)
			argIdx++
		}
	}

	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Transport("failed to list relationships", err)
	}
	defer rows.Close()

	var rels []*entities.Relationship
	for rows.Next() {
		var rel entities.Relationship
		if err := rows.Scan(&rel.ID, &rel.RequesterID, &rel.AddresseeID, &rel.Status, &rel.CreatedAt); err != nil {
			return nil, apperrors.Transport("failed to scan relationship", err)
		}
		rels = append(rels, &rel)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transport("error iterating relationships", err)
	}

	return rels, nil
}

// UpdateStatus transitions a row's status and refreshes its timestamp.
// The refreshed timestamp is what the activity aggregator compares against
// the notifications watermark.
func (r *PostgresRelationshipRepository) UpdateStatus(ctx context.Context, id string, status entities.RelationshipStatus, at time.Time) error {
	query := `
		UPDATE relationships
		SET status = $2, created_at = $3
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return apperrors.Transport("failed to update relationship status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Transport("failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.InvalidState("relationship no longer exists")
	}

	return nil
}

// Delete removes a relationship row
func (r *PostgresRelationshipRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM relationships WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return apperrors.Transport("failed to delete relationship", err)
	}
	return nil
}
