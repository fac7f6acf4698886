package activity

import (
	"context"
	"fmt"
	"sort"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
)

// Counts is the unread summary shown on the navigation badges
type Counts struct {
	UnreadRequests int `json:"unread_requests"`
	UnreadMessages int `json:"unread_messages"`
}

// Aggregator derives unread counts and the notification feed from the stores
// and the user's watermarks. It holds no state of its own: the same store
// snapshot always produces the same result, so callers may recompute freely.
type Aggregator struct {
	relationshipRepo repositories.RelationshipRepository
	messageRepo      repositories.MessageRepository
	userRepo         repositories.UserRepository
	watermarkRepo    repositories.WatermarkRepository
}

// NewAggregator creates a new activity Aggregator
func NewAggregator(
	relationshipRepo repositories.RelationshipRepository,
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	watermarkRepo repositories.WatermarkRepository,
) *Aggregator {
	return &Aggregator{
		relationshipRepo: relationshipRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		watermarkRepo:    watermarkRepo,
	}
}

// Counts returns the number of unread friend requests and unread messages for
// the user. A request is unread when its row is newer than the notifications
// watermark; a message when it is newer than the messages watermark.
func (a *Aggregator) Counts(ctx context.Context, userID string) (*Counts, error) {
	wm, err := a.watermarkRepo.GetOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := a.relationshipRepo.List(ctx, &repositories.RelationshipFilter{
		AddresseeID:  userID,
		Status:       entities.RelationshipPending,
		CreatedAfter: wm.Notifications,
	})
	if err != nil {
		return nil, err
	}

	unreadMsgs, err := a.messageRepo.CountReceivedSince(ctx, userID, wm.Messages)
	if err != nil {
		return nil, err
	}

	return &Counts{
		UnreadRequests: len(pending),
		UnreadMessages: unreadMsgs,
	}, nil
}

// Feed returns the user's notification feed, newest first. Friend requests
// are the only entry kind emitted today; the entry shape is shared so other
// kinds can join the same channel later.
func (a *Aggregator) Feed(ctx context.Context, userID string) ([]*entities.NotificationEntry, error) {
	wm, err := a.watermarkRepo.GetOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending, err := a.relationshipRepo.List(ctx, &repositories.RelationshipFilter{
		AddresseeID:  userID,
		Status:       entities.RelationshipPending,
		CreatedAfter: wm.Notifications,
	})
	if err != nil {
		return nil, err
	}

	requesterIDs := make([]string, 0, len(pending))
	for _, rel := range pending {
		requesterIDs = append(requesterIDs, rel.RequesterID)
	}
	requesters, err := a.userRepo.GetByIDs(ctx, requesterIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]*entities.NotificationEntry, 0, len(pending))
	for _, rel := range pending {
		name := rel.RequesterID
		if u, ok := requesters[rel.RequesterID]; ok {
			name = u.DisplayName()
		}
		entries = append(entries, &entities.NotificationEntry{
			ID:        fmt.Sprintf("friend_%s", rel.RequesterID),
			Kind:      entities.NotificationFriendRequest,
			SubjectID: rel.RequesterID,
			Message:   fmt.Sprintf("%s sent you a friend request", name),
			Timestamp: rel.CreatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].ID < entries[j].ID
	})

	return entries, nil
}
