package domain

import (
	"time"
)

// Profile represents a chat user.
type Profile struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// Channel represents a named conversation space.
type Channel struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Message represents a chat message. Messages are immutable once created;
// only the reply counter and the embedding may change after insert.
type Message struct {
	ID         string
	ChannelID  string // empty for direct messages
	UserID     string
	Content    string
	Embedding  []float32 // nil until computed
	ParentID   string    // set for thread replies
	ReplyCount int
	CreatedAt  time.Time
}

// ContextMessage is a message as it appears inside a retrieval context
// window, with the author's username resolved.
type ContextMessage struct {
	ID        string
	Content   string
	UserID    string
	Username  string
	CreatedAt time.Time
}

// ValidateMessage validates a Message before insert.
func ValidateMessage(m *Message) error {
	if m == nil {
		return NewDomainError(ErrCodeValidation, "message cannot be nil")
	}
	if m.ID == "" {
		return NewDomainError(ErrCodeValidation, "message ID is required")
	}
	if m.UserID == "" {
		return NewDomainError(ErrCodeValidation, "message user ID is required")
	}
	if m.Content == "" {
		return ErrEmptyMessageContent
	}
	return nil
}

// ValidateChannel validates a Channel before insert.
func ValidateChannel(c *Channel) error {
	if c == nil {
		return NewDomainError(ErrCodeValidation, "channel cannot be nil")
	}
	if c.ID == "" {
		return NewDomainError(ErrCodeValidation, "channel ID is required")
	}
	if c.Name == "" {
		return NewDomainError(ErrCodeValidation, "channel name is required")
	}
	return nil
}
