package message

import (
	"context"
	"sort"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/pkg/apperrors"
	"github.com/google/uuid"
)

// ConversationPreview is one entry of the conversation list: a friend, the
// time of the latest exchange (or the friendship date when the pair has
// never messaged), and how many of their messages are still unread.
type ConversationPreview struct {
	Friend       *entities.User
	LastActivity time.Time
	UnreadCount  int
}

// ServiceInterface defines direct-messaging operations
type ServiceInterface interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*entities.Message, error)
	Conversation(ctx context.Context, userID, otherID string) ([]*entities.Message, error)
	ListConversations(ctx context.Context, userID string) ([]*ConversationPreview, error)
}

// Service implements direct messaging between friends
type Service struct {
	messageRepo      repositories.MessageRepository
	relationshipRepo repositories.RelationshipRepository
	userRepo         repositories.UserRepository
	watermarkRepo    repositories.WatermarkRepository
	now              func() time.Time
}

// NewService creates a new message Service
func NewService(
	messageRepo repositories.MessageRepository,
	relationshipRepo repositories.RelationshipRepository,
	userRepo repositories.UserRepository,
	watermarkRepo repositories.WatermarkRepository,
) *Service {
	return &Service{
		messageRepo:      messageRepo,
		relationshipRepo: relationshipRepo,
		userRepo:         userRepo,
		watermarkRepo:    watermarkRepo,
		now:              time.Now,
	}
}

// Send creates a message from senderID to receiverID.
// Messaging is only available between accepted friends.
func (s *Service) Send(ctx context.Context, senderID, receiverID, content string) (*entities.Message, error) {
	msg := &entities.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		SentAt:     s.now(),
	}
	if err := msg.Validate(); err != nil {
		return nil, apperrors.InvalidArgument(err.Error())
	}

	rel, err := s.relationshipRepo.GetByPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if rel == nil || rel.Status != entities.RelationshipAccepted {
		return nil, apperrors.NotAuthorized("messages can only be sent to friends")
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// Conversation returns all messages between the two users, oldest first
func (s *Service) Conversation(ctx context.Context, userID, otherID string) ([]*entities.Message, error) {
	if userID == "" || otherID == "" {
		return nil, apperrors.InvalidArgument("both user IDs are required")
	}

	return s.messageRepo.ListBetween(ctx, userID, otherID)
}

// ListConversations returns one preview per friend, ordered by most recent
// activity. Unread counts compare each friend's messages against the user's
// messages watermark.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]*ConversationPreview, error) {
	if userID == "" {
		return nil, apperrors.InvalidArgument("user ID is required")
	}

	rels, err := s.relationshipRepo.List(ctx, &repositories.RelationshipFilter{
		InvolvingUserID: userID,
		Status:          entities.RelationshipAccepted,
	})
	if err != nil {
		return nil, err
	}

	wm, err := s.watermarkRepo.GetOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rels))
	friendIDs := make([]string, 0, len(rels))
	friendedAt := make(map[string]time.Time, len(rels))
	for _, rel := range rels {
		key := rel.PairKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		other := rel.Other(userID)
		friendIDs = append(friendIDs, other)
		friendedAt[other] = rel.CreatedAt
	}

	users, err := s.userRepo.GetByIDs(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	previews := make([]*ConversationPreview, 0, len(friendIDs))
	for _, friendID := range friendIDs {
		friend, ok := users[friendID]
		if !ok {
			continue
		}

		lastActivity := friendedAt[friendID]
		latest, err := s.messageRepo.LatestBetween(ctx, userID, friendID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			lastActivity = latest.SentAt
		}

		unread, err := s.messageRepo.CountReceivedFromSince(ctx, userID, friendID, wm.Messages)
		if err != nil {
			return nil, err
		}

		previews = append(previews, &ConversationPreview{
			Friend:       friend,
			LastActivity: lastActivity,
			UnreadCount:  unread,
		})
	}

	sort.Slice(previews, func(i, j int) bool {
		if !previews[i].LastActivity.Equal(previews[j].LastActivity) {
			return previews[i].LastActivity.After(previews[j].LastActivity)
		}
		return previews[i].Friend.ID < previews[j].Friend.ID
	})

	return previews, nil
}
