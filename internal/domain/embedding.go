package domain

import (
	"time"
)

// EmbeddingJobStatus represents the status of an embedding backfill job
type EmbeddingJobStatus string

const (
	EmbeddingJobStatusPending    EmbeddingJobStatus = "pending"
	EmbeddingJobStatusProcessing EmbeddingJobStatus = "processing"
	EmbeddingJobStatusCompleted  EmbeddingJobStatus = "completed"
	EmbeddingJobStatusFailed     EmbeddingJobStatus = "failed"
)

// EmbeddingJob tracks a message whose embedding could not be computed at
// ingest time and must be backfilled by the worker.
type EmbeddingJob struct {
	ID          string
	MessageID   string
	Status      EmbeddingJobStatus
	Retries     int
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ValidateEmbeddingJob validates an EmbeddingJob instance
func ValidateEmbeddingJob(j *EmbeddingJob) error {
	if j == nil {
		return NewDomainError(ErrCodeValidation, "embedding job cannot be nil")
	}
	if j.ID == "" {
		return NewDomainError(ErrCodeValidation, "embedding job ID is required")
	}
	if j.MessageID == "" {
		return NewDomainError(ErrCodeValidation, "embedding job message ID is required")
	}
	if !isValidEmbeddingJobStatus(j.Status) {
		return ErrInvalidEmbeddingJobStatus
	}
	return nil
}

func isValidEmbeddingJobStatus(s EmbeddingJobStatus) bool {
	switch s {
	case EmbeddingJobStatusPending, EmbeddingJobStatusProcessing,
		EmbeddingJobStatusCompleted, EmbeddingJobStatusFailed:
		return true
	}
	return false
}
