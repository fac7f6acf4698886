package relationship

import (
	"context"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/pkg/apperrors"
	"github.com/google/uuid"
)

// Friend is a friend list entry
type Friend struct {
	User         *entities.User
	FriendsSince time.Time
}

// PendingRequest is a pending friend request seen from either side
type PendingRequest struct {
	User        *entities.User // the other party
	RequestedAt time.Time
}

// UnfriendRequest carries the parameters for removing an accepted friendship.
// Confirmed must be set explicitly by the caller boundary; the engine rejects
// unconfirmed removals so callers cannot silently auto-confirm.
type UnfriendRequest struct {
	UserID    string
	OtherID   string
	Confirmed bool
}

// ServiceInterface defines the friend-request lifecycle operations
type ServiceInterface interface {
	Status(ctx context.Context, currentUserID, otherUserID string) (State, error)
	Request(ctx context.Context, requesterID, addresseeID string) (*entities.Relationship, error)
	Accept(ctx context.Context, currentUserID, requesterID string) error
	Decline(ctx context.Context, currentUserID, requesterID string) error
	Cancel(ctx context.Context, currentUserID, addresseeID string) error
	Unfriend(ctx context.Context, req *UnfriendRequest) error
	ListFriends(ctx context.Context, userID string) ([]*Friend, error)
	ListPendingReceived(ctx context.Context, userID string) ([]*PendingRequest, error)
	ListPendingSent(ctx context.Context, userID string) ([]*PendingRequest, error)
}

// Service implements the relationship state machine over the relationship store
type Service struct {
	relationshipRepo repositories.RelationshipRepository
	userRepo         repositories.UserRepository
	now              func() time.Time
}

// NewService creates a new relationship Service
func NewService(relationshipRepo repositories.RelationshipRepository, userRepo repositories.UserRepository) *Service {
	return &Service{
		relationshipRepo: relationshipRepo,
		userRepo:         userRepo,
		now:              time.Now,
	}
}

func validatePair(currentUserID, otherUserID string) error {
	if currentUserID == "" || otherUserID == "" {
		return apperrors.InvalidArgument("both user IDs are required")
	}
	if currentUserID == otherUserID {
		return apperrors.InvalidArgument("a user cannot have a relationship with themselves")
	}
	return nil
}

// Status derives the relationship state for the pair
func (s *Service) Status(ctx context.Context, currentUserID, otherUserID string) (State, error) {
	if err := validatePair(currentUserID, otherUserID); err != nil {
		return StateNone, err
	}

	rel, err := s.relationshipRepo.GetByPair(ctx, currentUserID, otherUserID)
	if err != nil {
		return StateNone, err
	}
	if rel == nil {
		return StateNone, nil
	}

	return Classify(currentUserID, otherUserID, []*entities.Relationship{rel}), nil
}

// Request sends a friend request from requesterID to addresseeID.
// The existence check runs immediately before the insert; a true race
// between both sides is resolved by the store's unique index on the
// unordered pair and surfaces as a conflict error.
func (s *Service) Request(ctx context.Context, requesterID, addresseeID string) (*entities.Relationship, error) {
	if err := validatePair(requesterID, addresseeID); err != nil {
		return nil, err
	}

	existing, err := s.relationshipRepo.GetByPair(ctx, requesterID, addresseeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("relationship already exists between these users")
	}

	rel := &entities.Relationship{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      entities.RelationshipPending,
		CreatedAt:   s.now(),
	}
	if err := s.relationshipRepo.Create(ctx, rel); err != nil {
		return nil, err
	}

	return rel, nil
}

// Accept transitions a pending request addressed to currentUserID into a
// friendship. The row's timestamp is refreshed to the acceptance time, which
// is the event the activity aggregator anchors notifications on.
func (s *Service) Accept(ctx context.Context, currentUserID, requesterID string) error {
	rel, err := s.pendingBetween(ctx, currentUserID, requesterID)
	if err != nil {
		return err
	}
	if rel.AddresseeID != currentUserID {
		return apperrors.NotAuthorized("only the recipient may accept a friend request")
	}

	return s.relationshipRepo.UpdateStatus(ctx, rel.ID, entities.RelationshipAccepted, s.now())
}

// Decline deletes a pending request addressed to currentUserID.
// The row is removed outright, so the pair may immediately re-request.
func (s *Service) Decline(ctx context.Context, currentUserID, requesterID string) error {
	rel, err := s.pendingBetween(ctx, currentUserID, requesterID)
	if err != nil {
		return err
	}
	if rel.AddresseeID != currentUserID {
		return apperrors.NotAuthorized("only the recipient may decline a friend request")
	}

	return s.relationshipRepo.Delete(ctx, rel.ID)
}

// Cancel deletes a pending request sent by currentUserID
func (s *Service) Cancel(ctx context.Context, currentUserID, addresseeID string) error {
	rel, err := s.pendingBetween(ctx, currentUserID, addresseeID)
	if err != nil {
		return err
	}
	if rel.RequesterID != currentUserID {
		return apperrors.NotAuthorized("only the requester may cancel a friend request")
	}

	return s.relationshipRepo.Delete(ctx, rel.ID)
}

// Unfriend deletes an accepted friendship. Either party may invoke it, but
// the request must carry an explicit confirmation.
func (s *Service) Unfriend(ctx context.Context, req *UnfriendRequest) error {
	if err := validatePair(req.UserID, req.OtherID); err != nil {
		return err
	}
	if !req.Confirmed {
		return apperrors.InvalidArgument("removing a friend requires explicit confirmation")
	}

	rel, err := s.relationshipRepo.GetByPair(ctx, req.UserID, req.OtherID)
	if err != nil {
		return err
	}
	if rel == nil {
		return apperrors.InvalidState("no relationship exists between these users")
	}
	if rel.Status != entities.RelationshipAccepted {
		return apperrors.InvalidState("relationship is not an accepted friendship")
	}

	return s.relationshipRepo.Delete(ctx, rel.ID)
}

// pendingBetween fetches the single row linking the pair and verifies it is
// still pending
func (s *Service) pendingBetween(ctx context.Context, userA, userB string) (*entities.Relationship, error) {
	if err := validatePair(userA, userB); err != nil {
		return nil, err
	}

	rel, err := s.relationshipRepo.GetByPair(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, apperrors.InvalidState("no pending request exists between these users")
	}
	if rel.Status != entities.RelationshipPending {
		return nil, apperrors.InvalidState("request is no longer pending")
	}

	return rel, nil
}

// ListFriends returns the user's accepted friendships with profiles.
// A single union query over both directions is deduplicated by the
// unordered pair key, so a friend can never appear twice.
func (s *Service) ListFriends(ctx context.Context, userID string) ([]*Friend, error) {
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

	seen := make(map[string]bool, len(rels))
	otherIDs := make([]string, 0, len(rels))
	since := make(map[string]time.Time, len(rels))
	for _, rel := range rels {
		key := rel.PairKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		other := rel.Other(userID)
		otherIDs = append(otherIDs, other)
		since[other] = rel.CreatedAt
	}

	users, err := s.userRepo.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	friends := make([]*Friend, 0, len(otherIDs))
	for _, id := range otherIDs {
		user, ok := users[id]
		if !ok {
			continue
		}
		friends = append(friends, &Friend{User: user, FriendsSince: since[id]})
	}

	return friends, nil
}

// ListPendingReceived returns requests awaiting the user's accept/decline
func (s *Service) ListPendingReceived(ctx context.Context, userID string) ([]*PendingRequest, error) {
	return s.listPending(ctx, userID, &repositories.RelationshipFilter{
		AddresseeID: userID,
		Status:      entities.RelationshipPending,
	})
}

// ListPendingSent returns requests the user sent that are still cancellable
func (s *Service) ListPendingSent(ctx context.Context, userID string) ([]*PendingRequest, error) {
	return s.listPending(ctx, userID, &repositories.RelationshipFilter{
		RequesterID: userID,
		Status:      entities.RelationshipPending,
	})
}

func (s *Service) listPending(ctx context.Context, userID string, filter *repositories.RelationshipFilter) ([]*PendingRequest, error) {
	if userID == "" {
		return nil, apperrors.InvalidArgument("user ID is required")
	}

	rels, err := s.relationshipRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(rels))
	for _, rel := range rels {
		otherIDs = append(otherIDs, rel.Other(userID))
	}

	users, err := s.userRepo.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	pending := make([]*PendingRequest, 0, len(rels))
	for _, rel := range rels {
		user, ok := users[rel.Other(userID)]
		if !ok {
			continue
		}
		pending = append(pending, &PendingRequest{User: user, RequestedAt: rel.CreatedAt})
	}

	return pending, nil
}
