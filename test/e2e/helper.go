package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayase/tomodachi/internal/handlers"
	"github.com/ayase/tomodachi/internal/infrastructure/config"
	"github.com/ayase/tomodachi/internal/infrastructure/database"
	"github.com/ayase/tomodachi/internal/repositories/postgres"
	"github.com/ayase/tomodachi/internal/services/activity"
	"github.com/ayase/tomodachi/internal/services/message"
	"github.com/ayase/tomodachi/internal/services/relationship"
	"github.com/ayase/tomodachi/internal/services/watermark"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "e2e-test-secret"

// E2ETestServer is a full engine stack over the test database behind an
// httptest server
type E2ETestServer struct {
	Server   *httptest.Server
	DB       *sql.DB
	Sessions *activity.Manager
	cancel   context.CancelFunc
}

// SetupE2ETest boots the full stack against the test database
func SetupE2ETest(t *testing.T) *E2ETestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.InitConfig("test")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		t.Fatalf("failed to find project root: %v", err)
	}
	migrationsPath := filepath.Join(projectRoot, "internal/infrastructure/database/migrations/postgres")
	if err := pg.RunMigrations(migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupDatabase(t, pg.DB)

	relationshipRepo := postgres.NewPostgresRelationshipRepository(pg.DB)
	messageRepo := postgres.NewPostgresMessageRepository(pg.DB)
	userRepo := postgres.NewPostgresUserRepository(pg.DB)
	watermarkRepo := postgres.NewPostgresWatermarkRepository(pg.DB)

	relationshipService := relationship.NewService(relationshipRepo, userRepo)
	watermarkService := watermark.NewService(watermarkRepo)
	messageService := message.NewService(messageRepo, relationshipRepo, userRepo, watermarkRepo)
	aggregator := activity.NewAggregator(relationshipRepo, messageRepo, userRepo, watermarkRepo)

	pollCtx, cancel := context.WithCancel(context.Background())
	// Short interval so scenarios observe background refreshes quickly
	sessions := activity.NewManager(pollCtx, aggregator, watermarkService, 100*time.Millisecond, nil)

	router := handlers.NewRouter(&handlers.RouterConfig{
		JWTSecret:           testSecret,
		RelationshipService: relationshipService,
		MessageService:      messageService,
		UserRepo:            userRepo,
		Sessions:            sessions,
		Health:              pg,
	})

	return &E2ETestServer{
		Server:   httptest.NewServer(router),
		DB:       pg.DB,
		Sessions: sessions,
		cancel:   cancel,
	}
}

// Teardown stops pollers and releases the server and database
func (s *E2ETestServer) Teardown(t *testing.T) {
	t.Helper()
	s.cancel()
	s.Sessions.Shutdown()
	s.Server.Close()
	cleanupDatabase(t, s.DB)
	s.DB.Close()
}

func cleanupDatabase(t *testing.T, db *sql.DB) {
	t.Helper()
	tables := []string{"messages", "relationships", "watermarks", "users"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("warning: failed to clean up table %s: %v", table, err)
		}
	}
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// SeedUser inserts a user fixture
func (s *E2ETestServer) SeedUser(t *testing.T, id, userName, email string) {
	t.Helper()
	_, err := s.DB.Exec(`
		INSERT INTO users (id, user_name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, id, userName, email)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

// Token issues a bearer token for the given user
func Token(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// Do sends an authenticated JSON request and decodes the response body
func (s *E2ETestServer) Do(t *testing.T, userID, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+Token(t, userID))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("failed to read response body: %v", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				t.Fatalf("failed to decode response %s: %v", data, err)
			}
		}
	}

	return resp.StatusCode
}
