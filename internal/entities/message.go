package entities

import (
	"fmt"
	"time"
)

// Message represents a direct message between two users.
// Messages are immutable once created; read state is derived from the
// receiver's messages watermark, never stored on the message itself.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	SentAt     time.Time
}

// Validate checks if the message is valid
func (m *Message) Validate() error {
	if m.SenderID == "" {
		return fmt.Errorf("sender ID is required")
	}
	if m.ReceiverID == "" {
		return fmt.Errorf("receiver ID is required")
	}
	if m.SenderID == m.ReceiverID {
		return fmt.Errorf("sender and receiver must be different users")
	}
	if m.Content == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}
