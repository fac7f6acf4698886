package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/internal/services/activity"
	"github.com/ayase/tomodachi/internal/services/message"
	"github.com/ayase/tomodachi/internal/services/relationship"
	"github.com/golang-jwt/jwt/v5"
)

// Stub services with overridable function fields, for handler tests.
// A nil field means the operation succeeds with a zero result.

type stubRelationshipService struct {
	StatusFn              func(ctx context.Context, currentUserID, otherUserID string) (relationship.State, error)
	RequestFn             func(ctx context.Context, requesterID, addresseeID string) (*entities.Relationship, error)
	AcceptFn              func(ctx context.Context, currentUserID, requesterID string) error
	DeclineFn             func(ctx context.Context, currentUserID, requesterID string) error
	CancelFn              func(ctx context.Context, currentUserID, addresseeID string) error
	UnfriendFn            func(ctx context.Context, req *relationship.UnfriendRequest) error
	ListFriendsFn         func(ctx context.Context, userID string) ([]*relationship.Friend, error)
	ListPendingReceivedFn func(ctx context.Context, userID string) ([]*relationship.PendingRequest, error)
	ListPendingSentFn     func(ctx context.Context, userID string) ([]*relationship.PendingRequest, error)
}

func (s *stubRelationshipService) Status(ctx context.Context, currentUserID, otherUserID string) (relationship.State, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, currentUserID, otherUserID)
	}
	return relationship.StateNone, nil
}

func (s *stubRelationshipService) Request(ctx context.Context, requesterID, addresseeID string) (*entities.Relationship, error) {
	if s.RequestFn != nil {
		return s.RequestFn(ctx, requesterID, addresseeID)
	}
	return &entities.Relationship{ID: "r1", RequesterID: requesterID, AddresseeID: addresseeID, Status: entities.RelationshipPending}, nil
}

func (s *stubRelationshipService) Accept(ctx context.Context, currentUserID, requesterID string) error {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, currentUserID, requesterID)
	}
	return nil
}

func (s *stubRelationshipService) Decline(ctx context.Context, currentUserID, requesterID string) error {
	if s.DeclineFn != nil {
		return s.DeclineFn(ctx, currentUserID, requesterID)
	}
	return nil
}

func (s *stubRelationshipService) Cancel(ctx context.Context, currentUserID, addresseeID string) error {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, currentUserID, addresseeID)
	}
	return nil
}

func (s *stubRelationshipService) Unfriend(ctx context.Context, req *relationship.UnfriendRequest) error {
	if s.UnfriendFn != nil {
		return s.UnfriendFn(ctx, req)
	}
	return nil
}

func (s *stubRelationshipService) ListFriends(ctx context.Context, userID string) ([]*relationship.Friend, error) {
	if s.ListFriendsFn != nil {
		return s.ListFriendsFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubRelationshipService) ListPendingReceived(ctx context.Context, userID string) ([]*relationship.PendingRequest, error) {
	if s.ListPendingReceivedFn != nil {
		return s.ListPendingReceivedFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubRelationshipService) ListPendingSent(ctx context.Context, userID string) ([]*relationship.PendingRequest, error) {
	if s.ListPendingSentFn != nil {
		return s.ListPendingSentFn(ctx, userID)
	}
	return nil, nil
}

type stubMessageService struct {
	SendFn              func(ctx context.Context, senderID, receiverID, content string) (*entities.Message, error)
	ConversationFn      func(ctx context.Context, userID, otherID string) ([]*entities.Message, error)
	ListConversationsFn func(ctx context.Context, userID string) ([]*message.ConversationPreview, error)
}

func (s *stubMessageService) Send(ctx context.Context, senderID, receiverID, content string) (*entities.Message, error) {
	if s.SendFn != nil {
		return s.SendFn(ctx, senderID, receiverID, content)
	}
	return &entities.Message{ID: "m1", SenderID: senderID, ReceiverID: receiverID, Content: content}, nil
}

func (s *stubMessageService) Conversation(ctx context.Context, userID, otherID string) ([]*entities.Message, error) {
	if s.ConversationFn != nil {
		return s.ConversationFn(ctx, userID, otherID)
	}
	return nil, nil
}

func (s *stubMessageService) ListConversations(ctx context.Context, userID string) ([]*message.ConversationPreview, error) {
	if s.ListConversationsFn != nil {
		return s.ListConversationsFn(ctx, userID)
	}
	return nil, nil
}

type stubUserRepository struct {
	users []*entities.User
}

func (s *stubUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entities.User, error) {
	result := make(map[string]*entities.User)
	for _, u := range s.users {
		for _, id := range ids {
			if u.ID == id {
				result[id] = u
			}
		}
	}
	return result, nil
}

func (s *stubUserRepository) ListOthers(ctx context.Context, excludeID string) ([]*entities.User, error) {
	var result []*entities.User
	for _, u := range s.users {
		if u.ID != excludeID {
			result = append(result, u)
		}
	}
	return result, nil
}

// In-memory repositories backing the activity manager in handler tests

type stubRelationshipRepository struct {
	rels []*entities.Relationship
}

func (s *stubRelationshipRepository) Create(ctx context.Context, rel *entities.Relationship) error {
	s.rels = append(s.rels, rel)
	return nil
}

func (s *stubRelationshipRepository) GetByPair(ctx context.Context, userA, userB string) (*entities.Relationship, error) {
	for _, rel := range s.rels {
		if (rel.RequesterID == userA && rel.AddresseeID == userB) ||
			(rel.RequesterID == userB && rel.AddresseeID == userA) {
			return rel, nil
		}
	}
	return nil, nil
}

func (s *stubRelationshipRepository) List(ctx context.Context, filter *repositories.RelationshipFilter) ([]*entities.Relationship, error) {
	var result []*entities.Relationship
	for _, rel := range s.rels {
		if filter.AddresseeID != "" && rel.AddresseeID != filter.AddresseeID {
			continue
		}
		if filter.Status != "" && rel.Status != filter.Status {
			continue
		}
		if !filter.CreatedAfter.IsZero() && !rel.CreatedAt.After(filter.CreatedAfter) {
			continue
		}
		result = append(result, rel)
	}
	return result, nil
}

func (s *stubRelationshipRepository) UpdateStatus(ctx context.Context, id string, status entities.RelationshipStatus, at time.Time) error {
	return nil
}

func (s *stubRelationshipRepository) Delete(ctx context.Context, id string) error {
	return nil
}

type stubMessageRepository struct {
	messages []*entities.Message
}

func (s *stubMessageRepository) Create(ctx context.Context, msg *entities.Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

func (s *stubMessageRepository) ListBetween(ctx context.Context, userA, userB string) ([]*entities.Message, error) {
	return nil, nil
}

func (s *stubMessageRepository) CountReceivedSince(ctx context.Context, receiverID string, since time.Time) (int, error) {
	count := 0
	for _, msg := range s.messages {
		if msg.ReceiverID == receiverID && msg.SentAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (s *stubMessageRepository) CountReceivedFromSince(ctx context.Context, receiverID, senderID string, since time.Time) (int, error) {
	return 0, nil
}

func (s *stubMessageRepository) LatestBetween(ctx context.Context, userA, userB string) (*entities.Message, error) {
	return nil, nil
}

// stubWatermarkRepository is shared between request handlers and the
// manager's pollers, so access is serialized
type stubWatermarkRepository struct {
	mu    sync.Mutex
	marks map[string]*entities.Watermark
}

func (s *stubWatermarkRepository) getOrInitLocked(userID string) *entities.Watermark {
	if wm, ok := s.marks[userID]; ok {
		return wm
	}
	wm := &entities.Watermark{
		UserID:        userID,
		Notifications: time.Unix(0, 0),
		Messages:      time.Unix(0, 0),
	}
	if s.marks == nil {
		s.marks = make(map[string]*entities.Watermark)
	}
	s.marks[userID] = wm
	return wm
}

func (s *stubWatermarkRepository) GetOrInit(ctx context.Context, userID string) (*entities.Watermark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.getOrInitLocked(userID)
	return &cp, nil
}

func (s *stubWatermarkRepository) Advance(ctx context.Context, userID string, channel entities.Channel, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wm := s.getOrInitLocked(userID)
	switch channel {
	case entities.ChannelNotifications:
		if ts.After(wm.Notifications) {
			wm.Notifications = ts
		}
	case entities.ChannelMessages:
		if ts.After(wm.Messages) {
			wm.Messages = ts
		}
	}
	return nil
}

// mark returns a copy of the stored watermark for assertions
func (s *stubWatermarkRepository) mark(userID string) entities.Watermark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrInitLocked(userID)
}

type stubWatermarkService struct {
	repo *stubWatermarkRepository
}

func (s *stubWatermarkService) Get(ctx context.Context, userID string) (*entities.Watermark, error) {
	return s.repo.GetOrInit(ctx, userID)
}

func (s *stubWatermarkService) Advance(ctx context.Context, userID string, channel entities.Channel, ts time.Time) error {
	return s.repo.Advance(ctx, userID, channel, ts)
}

const testJWTSecret = "handler-test-secret"

// testToken issues a bearer token the Auth middleware accepts
func testToken(userID string) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(testJWTSecret))
	return signed
}

// testEnv bundles a router and the stubs behind it
type testEnv struct {
	relService *stubRelationshipService
	msgService *stubMessageService
	userRepo   *stubUserRepository
	relRepo    *stubRelationshipRepository
	msgRepo    *stubMessageRepository
	wmRepo     *stubWatermarkRepository
	sessions   *activity.Manager
}

func newTestEnv() *testEnv {
	env := &testEnv{
		relService: &stubRelationshipService{},
		msgService: &stubMessageService{},
		userRepo:   &stubUserRepository{},
		relRepo:    &stubRelationshipRepository{},
		msgRepo:    &stubMessageRepository{},
		wmRepo:     &stubWatermarkRepository{},
	}
	agg := activity.NewAggregator(env.relRepo, env.msgRepo, env.userRepo, env.wmRepo)
	env.sessions = activity.NewManager(context.Background(), agg, &stubWatermarkService{repo: env.wmRepo}, time.Hour, nil)
	return env
}

func (env *testEnv) router() *RouterConfig {
	return &RouterConfig{
		JWTSecret:           testJWTSecret,
		RelationshipService: env.relService,
		MessageService:      env.msgService,
		UserRepo:            env.userRepo,
		Sessions:            env.sessions,
	}
}
