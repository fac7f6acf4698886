package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/services/relationship"
	"github.com/ayase/tomodachi/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRelationshipHandler_Status(t *testing.T) {
	env := newTestEnv()
	env.relService.StatusFn = func(ctx context.Context, me, other string) (relationship.State, error) {
		if me != "alice" || other != "bob" {
			t.Errorf("pair = (%s, %s), want (alice, bob)", me, other)
		}
		return relationship.StateFriends, nil
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodGet, "/api/v1/relationships/status/bob", testToken("alice"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp["state"] != "friends" {
		t.Errorf("state = %q, want friends", resp["state"])
	}
}

func TestRelationshipHandler_SendRequest(t *testing.T) {
	env := newTestEnv()
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	env.relService.RequestFn = func(ctx context.Context, requesterID, addresseeID string) (*entities.Relationship, error) {
		return &entities.Relationship{
			ID:          "r1",
			RequesterID: requesterID,
			AddresseeID: addresseeID,
			Status:      entities.RelationshipPending,
			CreatedAt:   created,
		}, nil
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodPost, "/api/v1/relationships/requests", testToken("alice"), `{"user_id":"bob"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
	}
}

func TestRelationshipHandler_SendRequest_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "self request", err: apperrors.InvalidArgument("a user cannot have a relationship with themselves"), wantStatus: http.StatusBadRequest, wantCode: "INVALID_ARGUMENT"},
		{name: "duplicate", err: apperrors.Conflict("relationship already exists between these users"), wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "store down", err: apperrors.Transport("store unavailable", nil), wantStatus: http.StatusServiceUnavailable, wantCode: "TRANSPORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.relService.RequestFn = func(ctx context.Context, requesterID, addresseeID string) (*entities.Relationship, error) {
				return nil, tt.err
			}
			r := NewRouter(env.router())

			w := doRequest(t, r, http.MethodPost, "/api/v1/relationships/requests", testToken("alice"), `{"user_id":"bob"}`)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestRelationshipHandler_Accept(t *testing.T) {
	env := newTestEnv()
	var gotMe, gotOther string
	env.relService.AcceptFn = func(ctx context.Context, me, requesterID string) error {
		gotMe, gotOther = me, requesterID
		return nil
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodPost, "/api/v1/relationships/requests/bob/accept", testToken("alice"), "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if gotMe != "alice" || gotOther != "bob" {
		t.Errorf("accept called with (%s, %s), want (alice, bob)", gotMe, gotOther)
	}
}

func TestRelationshipHandler_Accept_WrongParty(t *testing.T) {
	env := newTestEnv()
	env.relService.AcceptFn = func(ctx context.Context, me, requesterID string) error {
		return apperrors.NotAuthorized("only the recipient may accept a friend request")
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodPost, "/api/v1/relationships/requests/bob/accept", testToken("alice"), "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRelationshipHandler_Unfriend_RequiresConfirmation(t *testing.T) {
	env := newTestEnv()
	env.relService.UnfriendFn = func(ctx context.Context, req *relationship.UnfriendRequest) error {
		if !req.Confirmed {
			return apperrors.InvalidArgument("removing a friend requires explicit confirmation")
		}
		return nil
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodDelete, "/api/v1/friends/bob", testToken("alice"), `{"confirmed":false}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed status = %d, want 400", w.Code)
	}

	w = doRequest(t, r, http.MethodDelete, "/api/v1/friends/bob", testToken("alice"), `{"confirmed":true}`)
	if w.Code != http.StatusNoContent {
		t.Errorf("confirmed status = %d, want 204", w.Code)
	}
}

func TestRelationshipHandler_ListFriends(t *testing.T) {
	env := newTestEnv()
	since := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	env.relService.ListFriendsFn = func(ctx context.Context, userID string) ([]*relationship.Friend, error) {
		return []*relationship.Friend{
			{User: &entities.User{ID: "bob", UserName: "bob"}, FriendsSince: since},
		}, nil
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodGet, "/api/v1/friends", testToken("alice"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Friends []struct {
			User struct {
				ID string `json:"id"`
			} `json:"user"`
			FriendsSince string `json:"friends_since"`
		} `json:"friends"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Friends) != 1 || resp.Friends[0].User.ID != "bob" {
		t.Errorf("friends = %+v, want one entry for bob", resp.Friends)
	}
	if resp.Friends[0].FriendsSince != "2024-06-01T12:00:00Z" {
		t.Errorf("friends_since = %q", resp.Friends[0].FriendsSince)
	}
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	env := newTestEnv()
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodGet, "/api/v1/friends", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/v1/friends", "not-a-jwt", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status with garbage token = %d, want 401", w.Code)
	}
}

func TestRouter_Healthz(t *testing.T) {
	env := newTestEnv()
	r := NewRouter(env.router())

	// No token required
	w := doRequest(t, r, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
