package entities

import "time"

// NotificationKind is the type of a notification feed entry
type NotificationKind string

const (
	// NotificationFriendRequest is emitted for pending requests addressed to the user
	NotificationFriendRequest NotificationKind = "friend_request"
)

// NotificationEntry is one entry of the derived notification feed.
// Entries are ephemeral: they are computed on every poll from the stores and
// the user's notifications watermark and are never persisted.
type NotificationEntry struct {
	ID        string           // stable within a feed, e.g. "friend_<requesterID>"
	Kind      NotificationKind
	SubjectID string           // the user the entry is about (the requester)
	Message   string           // human-readable text for the bell dropdown
	Timestamp time.Time
}
