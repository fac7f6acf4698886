package relationship

import "github.com/ayase/tomodachi/internal/entities"

// State is the derived relationship state between two users, always seen
// from the perspective of the first user passed to Classify.
type State string

const (
	// StateNone means no relationship row exists between the pair
	StateNone State = "none"
	// StateRequestSent means the current user sent a still-pending request
	StateRequestSent State = "request_sent"
	// StateRequestReceived means the other user sent a still-pending request
	StateRequestReceived State = "request_received"
	// StateFriends means the pair has an accepted relationship, either direction
	StateFriends State = "friends"
)

// Classify derives the relationship state between currentUserID and
// otherUserID from the given relationship set. It is a pure function: the
// same inputs always produce the same state, and the view is a mirror image
// between the two sides (A sees request_sent exactly when B sees
// request_received for the same row).
func Classify(currentUserID, otherUserID string, rels []*entities.Relationship) State {
	for _, rel := range rels {
		if !linksPair(rel, currentUserID, otherUserID) {
			continue
		}
		if rel.Status == entities.RelationshipAccepted {
			return StateFriends
		}
		if rel.RequesterID == currentUserID {
			return StateRequestSent
		}
		return StateRequestReceived
	}
	return StateNone
}

func linksPair(rel *entities.Relationship, userA, userB string) bool {
	return (rel.RequesterID == userA && rel.AddresseeID == userB) ||
		(rel.RequesterID == userB && rel.AddresseeID == userA)
}
