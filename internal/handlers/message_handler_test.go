package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/services/message"
	"github.com/ayase/tomodachi/pkg/apperrors"
)

func TestMessageHandler_Send(t *testing.T) {
	env := newTestEnv()
	sent := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	env.msgService.SendFn = func(ctx context.Context, senderID, receiverID, content string) (*entities.Message, error) {
		if senderID != "alice" || receiverID != "bob" || content != "hello" {
			t.Errorf("send called with (%s, %s, %q)", senderID, receiverID, content)
		}
		return &entities.Message{ID: "m1", SenderID: senderID, ReceiverID: receiverID, Content: content, SentAt: sent}, nil
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodPost, "/api/v1/messages", testToken("alice"), `{"receiver_id":"bob","content":"hello"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID     string `json:"id"`
		SentAt string `json:"sent_at"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.ID != "m1" || resp.SentAt != "2024-06-01T12:00:00Z" {
		t.Errorf("response = %+v", resp)
	}
}

func TestMessageHandler_Send_NotFriends(t *testing.T) {
	env := newTestEnv()
	env.msgService.SendFn = func(ctx context.Context, senderID, receiverID, content string) (*entities.Message, error) {
		return nil, apperrors.NotAuthorized("messages can only be sent to friends")
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodPost, "/api/v1/messages", testToken("alice"), `{"receiver_id":"bob","content":"hello"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestMessageHandler_Conversation(t *testing.T) {
	env := newTestEnv()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	env.msgService.ConversationFn = func(ctx context.Context, userID, otherID string) ([]*entities.Message, error) {
		return []*entities.Message{
			{ID: "m1", SenderID: "alice", ReceiverID: "bob", Content: "hi", SentAt: base},
			{ID: "m2", SenderID: "bob", ReceiverID: "alice", Content: "hey", SentAt: base.Add(time.Minute)},
		}, nil
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodGet, "/api/v1/messages/bob", testToken("alice"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Messages) != 2 || resp.Messages[0].ID != "m1" {
		t.Errorf("messages = %+v, want [m1, m2]", resp.Messages)
	}
}

func TestMessageHandler_Conversations(t *testing.T) {
	env := newTestEnv()
	env.msgService.ListConversationsFn = func(ctx context.Context, userID string) ([]*message.ConversationPreview, error) {
		return []*message.ConversationPreview{
			{
				Friend:       &entities.User{ID: "bob", UserName: "bob"},
				LastActivity: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
				UnreadCount:  3,
			},
		}, nil
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodGet, "/api/v1/messages", testToken("alice"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Conversations []struct {
			Friend struct {
				ID string `json:"id"`
			} `json:"friend"`
			UnreadCount int `json:"unread_count"`
		} `json:"conversations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Conversations) != 1 || resp.Conversations[0].Friend.ID != "bob" || resp.Conversations[0].UnreadCount != 3 {
		t.Errorf("conversations = %+v", resp.Conversations)
	}
}

func TestUserHandler_List(t *testing.T) {
	env := newTestEnv()
	env.userRepo.users = []*entities.User{
		{ID: "alice", UserName: "alice"},
		{ID: "bob", UserName: "bob"},
	}
	r := NewRouter(env.router())

	w := doRequest(t, r, http.MethodGet, "/api/v1/users", testToken("alice"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Users []userResponse `json:"users"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0].ID != "bob" {
		t.Errorf("users = %+v, want only bob (self excluded)", resp.Users)
	}
}
