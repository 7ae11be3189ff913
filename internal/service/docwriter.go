package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/pagination"
	"github.com/cloo-solutions/recallai/internal/telemetry"
)

// DocumentationRepositoryInterface defines the repository interface for
// documentation persistence
type DocumentationRepositoryInterface interface {
	Create(ctx context.Context, d *domain.DocumentationEntry) error
	GetByID(ctx context.Context, id string) (*domain.DocumentationEntry, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentationPageResult, error)
}

type DocumentationPageResult struct {
	Items      []*domain.DocumentationEntry
	NextCursor string
	HasMore    bool
}

// DocumentationWriterService persists synthesized answers back into the
// documentation corpus so future searches can recall them directly.
// Entries are append-only; near-duplicate questions produce separate rows.
type DocumentationWriterService struct {
	docRepo    DocumentationRepositoryInterface
	embeddings EmbeddingInterface
	uuidGen    UUIDGenerator
}

func NewDocumentationWriterService(
	docRepo DocumentationRepositoryInterface,
	embeddings EmbeddingInterface,
) *DocumentationWriterService {
	return &DocumentationWriterService{
		docRepo:    docRepo,
		embeddings: embeddings,
		uuidGen:    &DefaultUUIDGenerator{},
	}
}

func NewDocumentationWriterServiceWithUUIDGen(
	docRepo DocumentationRepositoryInterface,
	embeddings EmbeddingInterface,
	uuidGen UUIDGenerator,
) *DocumentationWriterService {
	return &DocumentationWriterService{
		docRepo:    docRepo,
		embeddings: embeddings,
		uuidGen:    uuidGen,
	}
}

// Save writes a synthesized answer with its question embedding. The
// embedding is required: an entry that cannot be found by future searches
// would be dead weight, so an embedding failure fails the save.
func (s *DocumentationWriterService) Save(ctx context.Context, question, answer string, sources []domain.SourceRef) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentationWriterService.Save", telemetry.SpanAttributes{
		Operation: "save",
	})
	defer span.End()

	embedding, err := s.embeddings.GenerateEmbedding(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to embed question: %w", err)
	}

	now := time.Now().UTC()
	entry := &domain.DocumentationEntry{
		ID:             s.uuidGen.NewString(),
		Question:       question,
		Answer:         answer,
		SourceMessages: sources,
		Embedding:      embedding,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := domain.ValidateDocumentationEntry(entry); err != nil {
		return err
	}

	return s.docRepo.Create(ctx, entry)
}
