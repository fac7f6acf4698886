package postgres

import (
	"context"
	"database/sql"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/pkg/apperrors"
	"github.com/lib/pq"
)

// PostgresUserRepository implements UserRepository using PostgreSQL.
// It is read-only: user rows are owned by the external auth system.
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *sql.DB) repositories.UserRepository {
	return &PostgresUserRepository{db: db}
}

// GetByID retrieves a user by ID, or nil if not found
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	query := `
		SELECT id, user_name, email, bio, avatar_url, created_at
		FROM users
		WHERE id = $1
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Transport("failed to get user", err)
	}

	return user, nil
}

// GetByIDs retrieves the users for the given IDs, keyed by ID
func (r *PostgresUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error) {
	users := make(map[string]*entities.User)
	if len(ids) == 0 {
		return users, nil
	}

	query := `
		SELECT id, user_name, email, bio, avatar_url, created_at
		FROM users
		WHERE id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.Transport("failed to get users", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.Transport("failed to scan user", err)
		}
		users[user.ID] = user
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transport("error iterating users", err)
	}

	return users, nil
}

// ListOthers retrieves all users except the given one
func (r *PostgresUserRepository) ListOthers(ctx context.Context, excludeID string) ([]*entities.User, error) {
	query := `
		SELECT id, user_name, email, bio, avatar_url, created_at
		FROM users
		WHERE id <> $1
		ORDER BY user_name, id
	`
	rows, err := r.db.QueryContext(ctx, query, excludeID)
	if err != nil {
		return nil, apperrors.Transport("failed to list users", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.Transport("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transport("error iterating users", err)
	}

	return users, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*entities.User, error) {
	var user entities.User
	var userName, bio, avatarURL sql.NullString

	err := row.Scan(&user.ID, &userName, &user.Email, &bio, &avatarURL, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	user.UserName = userName.String
	user.Bio = bio.String
	user.AvatarURL = avatarURL.String

	return &user, nil
}
