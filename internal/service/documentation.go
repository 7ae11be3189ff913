package service

import (
	"context"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/pagination"
	"github.com/cloo-solutions/recallai/internal/telemetry"
)

// DocumentationService exposes read access to the documentation corpus.
type DocumentationService struct {
	docRepo DocumentationRepositoryInterface
}

func NewDocumentationService(docRepo DocumentationRepositoryInterface) *DocumentationService {
	return &DocumentationService{docRepo: docRepo}
}

type ListDocumentationInput struct {
	Cursor string
	Limit  int
}

type ListDocumentationOutput struct {
	Items   []*domain.DocumentationEntry
	Cursor  string
	HasMore bool
}

func (s *DocumentationService) GetByID(ctx context.Context, id string) (*domain.DocumentationEntry, error) {
	return s.docRepo.GetByID(ctx, id)
}

func (s *DocumentationService) List(ctx context.Context, input ListDocumentationInput) (*ListDocumentationOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentationService.List", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.docRepo.ListWithCursor(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListDocumentationOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}
