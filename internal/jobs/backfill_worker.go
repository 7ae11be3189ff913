package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/recallai/internal/domain"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3
	// claimBatchSize bounds how many jobs one poll claims
	claimBatchSize = 100
)

// BackfillJobRepository defines the interface for embedding job persistence
type BackfillJobRepository interface {
	// ClaimPending retrieves and claims pending embedding jobs
	ClaimPending(ctx context.Context, limit int) ([]*domain.EmbeddingJob, error)

	// UpdateStatus updates the status of an embedding job
	UpdateStatus(ctx context.Context, jobID string, status domain.EmbeddingJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// MessageEmbedder computes and stores the embedding for a message
type MessageEmbedder interface {
	EmbedMessage(ctx context.Context, messageID string) error
}

// BackfillWorker processes embedding backfill jobs for messages that
// ingested without a vector.
type BackfillWorker struct {
	repo     BackfillJobRepository
	embedder MessageEmbedder
}

// NewBackfillWorker creates a new BackfillWorker instance
func NewBackfillWorker(repo BackfillJobRepository, embedder MessageEmbedder) *BackfillWorker {
	return &BackfillWorker{
		repo:     repo,
		embedder: embedder,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *BackfillWorker) ProcessJobs(ctx context.Context) error {
	_, err := w.processBatch(ctx)
	return err
}

// ProcessAll drains the queue: batches are claimed and processed until no
// pending jobs remain. Used by the one-shot backfill command.
func (w *BackfillWorker) ProcessAll(ctx context.Context) error {
	for {
		n, err := w.processBatch(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (w *BackfillWorker) processBatch(ctx context.Context) (int, error) {
	jobs, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return 0, nil
	}

	log.Printf("Processing %d pending embedding jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return len(jobs), nil
}

func (w *BackfillWorker) processJob(ctx context.Context, job *domain.EmbeddingJob) error {
	log.Printf("Processing job %s for message %s", job.ID, job.MessageID)

	if err := w.embedder.EmbedMessage(ctx, job.MessageID); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *BackfillWorker) handleJobFailure(ctx context.Context, job *domain.EmbeddingJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
