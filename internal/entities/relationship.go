package entities

import (
	"fmt"
	"time"
)

// RelationshipStatus is the stored status of a relationship row
type RelationshipStatus string

const (
	// RelationshipPending means a friend request awaiting accept/decline/cancel
	RelationshipPending RelationshipStatus = "pending"
	// RelationshipAccepted means both parties are friends
	RelationshipAccepted RelationshipStatus = "accepted"
)

// Relationship represents a directed relationship row between two users.
// RequesterID is the user who sent the friend request; AddresseeID is the
// recipient. After the request is accepted the direction is retained only
// for audit and the pair is treated symmetrically.
// Invariant: for any unordered pair of users at most one row exists,
// regardless of direction.
type Relationship struct {
	ID          string
	RequesterID string
	AddresseeID string
	Status      RelationshipStatus
	CreatedAt   time.Time // request time; refreshed to acceptance time on accept
}

// String returns a string representation of the relationship
// Format: requester->addressee:status
func (r *Relationship) String() string {
	return fmt.Sprintf("%s->%s:%s", r.RequesterID, r.AddresseeID, r.Status)
}

// Validate checks if the relationship is valid
func (r *Relationship) Validate() error {
	if r.RequesterID == "" {
		return fmt.Errorf("requester ID is required")
	}
	if r.AddresseeID == "" {
		return fmt.Errorf("addressee ID is required")
	}
	if r.RequesterID == r.AddresseeID {
		return fmt.Errorf("requester and addressee must be different users")
	}
	if r.Status != RelationshipPending && r.Status != RelationshipAccepted {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	return nil
}

// Involves reports whether the given user is on either side of the relationship
func (r *Relationship) Involves(userID string) bool {
	return r.RequesterID == userID || r.AddresseeID == userID
}

// Other returns the user on the opposite side from userID.
// Returns an empty string if userID is not part of the relationship.
func (r *Relationship) Other(userID string) string {
	switch userID {
	case r.RequesterID:
		return r.AddresseeID
	case r.AddresseeID:
		return r.RequesterID
	}
	return ""
}

// PairKey returns a direction-independent key for the unordered pair.
// The same key is produced for A->B and B->A rows.
func (r *Relationship) PairKey() string {
	if r.RequesterID < r.AddresseeID {
		return r.RequesterID + ":" + r.AddresseeID
	}
	return r.AddresseeID + ":" + r.RequesterID
}
