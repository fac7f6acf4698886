package entities

import "time"

// Channel identifies an independently tracked watermark stream
type Channel string

const (
	// ChannelNotifications covers all non-message event kinds (friend requests today)
	ChannelNotifications Channel = "notifications"
	// ChannelMessages covers direct messages
	ChannelMessages Channel = "messages"
)

// Valid reports whether c is a known channel
func (c Channel) Valid() bool {
	return c == ChannelNotifications || c == ChannelMessages
}

// Watermark holds a user's per-channel "last checked" timestamps.
// A row is created on first access with both channels at the Unix epoch so
// that activity predating the first login is still visible.
// Watermarks only ever move forward.
type Watermark struct {
	UserID        string
	Notifications time.Time
	Messages      time.Time
}

// For returns the timestamp for the given channel
func (w *Watermark) For(c Channel) time.Time {
	if c == ChannelMessages {
		return w.Messages
	}
	return w.Notifications
}
