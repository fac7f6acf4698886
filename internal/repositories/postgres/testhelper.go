package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/ayase/tomodachi/internal/infrastructure/config"
	"github.com/ayase/tomodachi/internal/infrastructure/database"
	_ "github.com/lib/pq"
)

// SetupTestDB creates a test database connection and runs migrations
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Initialize test config
	if err := config.InitConfig("test"); err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := pg.RunMigrations("../../../internal/infrastructure/database/migrations/postgres"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return pg.DB
}

// CleanupTestDB closes the database connection and cleans up test data
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	// Clean up all tables
	tables := []string{"messages", "relationships", "watermarks", "users"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("Warning: Failed to clean up table %s: %v", table, err)
		}
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}

// InsertTestUser inserts a user row for fixtures. User rows are normally
// owned by the auth system, so only tests write them.
func InsertTestUser(t *testing.T, db *sql.DB, id, userName, email string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO users (id, user_name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, id, userName, email)
	if err != nil {
		t.Fatalf("Failed to insert test user %s: %v", id, err)
	}
}
