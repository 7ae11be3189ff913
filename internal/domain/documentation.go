package domain

import (
	"time"
)

// SourceRef points a documentation entry back at one of the chat messages
// its answer was synthesized from, with enough detail to deep-link.
type SourceRef struct {
	MessageID   string `json:"id"`
	ChannelID   string `json:"channel_id,omitempty"`
	ChannelName string `json:"channel"`
	Username    string `json:"username"`
}

// DocumentationEntry is a persisted, previously synthesized answer. Entries
// are append-only: they are created by the documentation writer and never
// edited by users.
type DocumentationEntry struct {
	ID             string
	Question       string
	Answer         string
	SourceMessages []SourceRef
	Embedding      []float32 // embedding of the question text
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDocumentationEntry validates an entry before insert.
func ValidateDocumentationEntry(d *DocumentationEntry) error {
	if d == nil {
		return NewDomainError(ErrCodeValidation, "documentation entry cannot be nil")
	}
	if d.ID == "" {
		return NewDomainError(ErrCodeValidation, "documentation entry ID is required")
	}
	if d.Question == "" {
		return NewDomainError(ErrCodeValidation, "documentation entry question is required")
	}
	if d.Answer == "" {
		return NewDomainError(ErrCodeValidation, "documentation entry answer is required")
	}
	return nil
}
