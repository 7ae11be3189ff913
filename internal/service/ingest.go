package service

import (
	"context"
	"log"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/pagination"
	"github.com/cloo-solutions/recallai/internal/telemetry"
)

// MessageRepositoryInterface defines the repository interface for message
// persistence
type MessageRepositoryInterface interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	IncrementReplyCount(ctx context.Context, id string) error
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
	ContextWindow(ctx context.Context, channelID string, ts time.Time, window time.Duration) ([]domain.ContextMessage, error)
	ListByChannelWithCursor(ctx context.Context, channelID string, cursor *pagination.Cursor, limit int) (*MessagePageResult, error)
}

type MessagePageResult struct {
	Items      []*domain.Message
	NextCursor string
	HasMore    bool
}

// EmbeddingJobRepositoryInterface defines the repository interface for
// embedding job persistence
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// TxRepositories exposes the repositories participating in a transaction.
type TxRepositories interface {
	Messages() MessageRepositoryInterface
	EmbeddingJobs() EmbeddingJobRepositoryInterface
}

// TxRunnerInterface runs a function within a database transaction.
type TxRunnerInterface interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// ChannelRepositoryInterface defines the repository interface for channel
// persistence
type ChannelRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Channel) error
	GetByID(ctx context.Context, id string) (*domain.Channel, error)
	GetByName(ctx context.Context, name string) (*domain.Channel, error)
	List(ctx context.Context) ([]*domain.Channel, error)
}

// MessageService handles message ingestion and channel history reads.
type MessageService struct {
	messageRepo MessageRepositoryInterface
	channelRepo ChannelRepositoryInterface
	txRunner    TxRunnerInterface
	embeddings  EmbeddingInterface
	uuidGen     UUIDGenerator
}

// NewMessageService creates a new MessageService. embeddings may be nil;
// messages then ingest without vectors and rely on the backfill worker.
func NewMessageService(
	messageRepo MessageRepositoryInterface,
	channelRepo ChannelRepositoryInterface,
	txRunner TxRunnerInterface,
	embeddings EmbeddingInterface,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
		txRunner:    txRunner,
		embeddings:  embeddings,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

// NewMessageServiceWithUUIDGen creates a new MessageService with a custom
// UUID generator (for testing)
func NewMessageServiceWithUUIDGen(
	messageRepo MessageRepositoryInterface,
	channelRepo ChannelRepositoryInterface,
	txRunner TxRunnerInterface,
	embeddings EmbeddingInterface,
	uuidGen UUIDGenerator,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
		txRunner:    txRunner,
		embeddings:  embeddings,
		uuidGen:     uuidGen,
	}
}

// PostMessageInput represents the input for posting a message
type PostMessageInput struct {
	ChannelID string
	UserID    string
	Content   string
	ParentID  string
}

// PostMessage ingests a message. Embedding is best-effort: a failure never
// blocks the post; the message is stored without a vector and a backfill
// job is queued in the same transaction.
func (s *MessageService) PostMessage(ctx context.Context, input PostMessageInput) (*domain.Message, error) {
	ctx, span := telemetry.StartSpan(ctx, "MessageService.PostMessage", telemetry.SpanAttributes{
		ChannelID: input.ChannelID,
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	message := &domain.Message{
		ID:        s.uuidGen.NewString(),
		ChannelID: input.ChannelID,
		UserID:    input.UserID,
		Content:   input.Content,
		ParentID:  input.ParentID,
		CreatedAt: now,
	}

	if err := domain.ValidateMessage(message); err != nil {
		return nil, err
	}

	if input.ChannelID != "" {
		if _, err := s.channelRepo.GetByID(ctx, input.ChannelID); err != nil {
			return nil, err
		}
	}

	if s.embeddings != nil {
		embedding, err := s.embeddings.GenerateEmbedding(ctx, input.Content)
		if err != nil {
			log.Printf("ingest: embedding failed for message %s, queuing backfill: %v", message.ID, err)
		} else {
			message.Embedding = embedding
		}
	}

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Messages().Create(ctx, message); err != nil {
			return err
		}

		if input.ParentID != "" {
			if err := repos.Messages().IncrementReplyCount(ctx, input.ParentID); err != nil {
				return err
			}
		}

		if len(message.Embedding) == 0 {
			job := &domain.EmbeddingJob{
				ID:        s.uuidGen.NewString(),
				MessageID: message.ID,
				Status:    domain.EmbeddingJobStatusPending,
				CreatedAt: now,
			}
			if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

// GetByID retrieves a message by ID
func (s *MessageService) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	return s.messageRepo.GetByID(ctx, id)
}

type ListMessagesInput struct {
	ChannelID string
	Cursor    string
	Limit     int
}

type ListMessagesOutput struct {
	Items   []*domain.Message
	Cursor  string
	HasMore bool
}

// ListChannelMessages pages through a channel's history, newest first.
func (s *MessageService) ListChannelMessages(ctx context.Context, input ListMessagesInput) (*ListMessagesOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "MessageService.ListChannelMessages", telemetry.SpanAttributes{
		ChannelID: input.ChannelID,
		Operation: "list",
	})
	defer span.End()

	if _, err := s.channelRepo.GetByID(ctx, input.ChannelID); err != nil {
		return nil, err
	}

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	result, err := s.messageRepo.ListByChannelWithCursor(ctx, input.ChannelID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListMessagesOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}
