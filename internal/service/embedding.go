package service

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/recallai/internal/telemetry"
)

// MessageEmbeddingService backfills embeddings for messages that ingested
// without one. Driven by the background worker.
type MessageEmbeddingService struct {
	messageRepo MessageRepositoryInterface
	embeddings  EmbeddingInterface
}

func NewMessageEmbeddingService(
	messageRepo MessageRepositoryInterface,
	embeddings EmbeddingInterface,
) *MessageEmbeddingService {
	return &MessageEmbeddingService{
		messageRepo: messageRepo,
		embeddings:  embeddings,
	}
}

// EmbedMessage computes and attaches the embedding for a single message.
func (s *MessageEmbeddingService) EmbedMessage(ctx context.Context, messageID string) error {
	ctx, span := telemetry.StartSpan(ctx, "MessageEmbeddingService.EmbedMessage", telemetry.SpanAttributes{
		MessageID: messageID,
		Operation: "embed",
	})
	defer span.End()

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to load message: %w", err)
	}

	embedding, err := s.embeddings.GenerateEmbedding(ctx, message.Content)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.messageRepo.UpdateEmbedding(ctx, message.ID, embedding); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}
