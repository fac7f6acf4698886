package relationship

import (
	"testing"

	"github.com/ayase/tomodachi/internal/entities"
)

func TestClassify(t *testing.T) {
	rels := []*entities.Relationship{
		{ID: "r1", RequesterID: "alice", AddresseeID: "bob", Status: entities.RelationshipPending},
		{ID: "r2", RequesterID: "carol", AddresseeID: "alice", Status: entities.RelationshipPending},
		{ID: "r3", RequesterID: "dave", AddresseeID: "alice", Status: entities.RelationshipAccepted},
	}

	tests := []struct {
		name    string
		current string
		other   string
		want    State
	}{
		{name: "request sent", current: "alice", other: "bob", want: StateRequestSent},
		{name: "request received", current: "bob", other: "alice", want: StateRequestReceived},
		{name: "received from carol", current: "alice", other: "carol", want: StateRequestReceived},
		{name: "friends as addressee", current: "alice", other: "dave", want: StateFriends},
		{name: "friends as requester", current: "dave", other: "alice", want: StateFriends},
		{name: "no relationship", current: "bob", other: "carol", want: StateNone},
		{name: "empty set", current: "alice", other: "nobody", want: StateNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.current, tt.other, rels); got != tt.want {
				t.Errorf("Classify(%s, %s) = %v, want %v", tt.current, tt.other, got, tt.want)
			}
		})
	}
}

// The two perspectives of any pair must always be mirror images
func TestClassify_Symmetry(t *testing.T) {
	mirror := map[State]State{
		StateNone:            StateNone,
		StateRequestSent:     StateRequestReceived,
		StateRequestReceived: StateRequestSent,
		StateFriends:         StateFriends,
	}

	sets := map[string][]*entities.Relationship{
		"pending":  {{ID: "r1", RequesterID: "alice", AddresseeID: "bob", Status: entities.RelationshipPending}},
		"accepted": {{ID: "r1", RequesterID: "alice", AddresseeID: "bob", Status: entities.RelationshipAccepted}},
		"empty":    {},
	}

	for name, rels := range sets {
		t.Run(name, func(t *testing.T) {
			fromA := Classify("alice", "bob", rels)
			fromB := Classify("bob", "alice", rels)
			if mirror[fromA] != fromB {
				t.Errorf("views are not mirrored: alice sees %v, bob sees %v", fromA, fromB)
			}
		})
	}
}
