package service

import (
	"context"
	"log"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/telemetry"
)

const (
	// MinQueryLength is the minimum query length before any retrieval
	// cost is incurred.
	MinQueryLength = 10
	// MatchThreshold is the minimum cosine similarity for a hit.
	MatchThreshold = 0.5
	// MatchCount caps the number of hits requested from the store.
	MatchCount = 25
	// RecencyWeight is the blend factor for the recency score.
	RecencyWeight = 0.1
	// MaxChunks caps the total evidence passed to synthesis.
	MaxChunks = 6
)

// EmbeddingInterface defines the interface for embedding generation
type EmbeddingInterface interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SearchRepositoryInterface defines the repository interface for the
// combined hybrid search.
type SearchRepositoryInterface interface {
	CombinedSearch(ctx context.Context, embedding []float32, threshold, recencyWeight float64, limit int) ([]*domain.KnowledgeHit, error)
}

// ContextReaderInterface fetches the conversation window around a hit.
type ContextReaderInterface interface {
	ContextWindow(ctx context.Context, channelID string, ts time.Time, window time.Duration) ([]domain.ContextMessage, error)
}

// RetrievalService turns a query into deduplicated, context-expanded
// knowledge chunks. Retrieval fails soft: any downstream error degrades to
// an empty result rather than surfacing to the caller.
type RetrievalService struct {
	embeddings EmbeddingInterface
	searchRepo SearchRepositoryInterface
	messages   ContextReaderInterface
}

func NewRetrievalService(
	embeddings EmbeddingInterface,
	searchRepo SearchRepositoryInterface,
	messages ContextReaderInterface,
) *RetrievalService {
	return &RetrievalService{
		embeddings: embeddings,
		searchRepo: searchRepo,
		messages:   messages,
	}
}

// Search retrieves ranked evidence for the query. Metadata is computed over
// the full hit list before the chunk cap applies, so provenance reflects
// everything the store matched, not just what fit into the cap.
func (s *RetrievalService) Search(ctx context.Context, query string) ([]domain.KnowledgeChunk, domain.SearchMetadata) {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	var meta domain.SearchMetadata

	if len(query) < MinQueryLength {
		return nil, meta
	}

	if s.embeddings == nil {
		return nil, meta
	}

	embedding, err := s.embeddings.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("retrieval: embedding failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return nil, meta
	}

	hits, err := s.searchRepo.CombinedSearch(ctx, embedding, MatchThreshold, RecencyWeight, MatchCount)
	if err != nil {
		log.Printf("retrieval: combined search failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return nil, meta
	}
	if len(hits) == 0 {
		return nil, meta
	}

	for _, hit := range hits {
		if hit.SourceKind == domain.SourceKindDocumentation {
			meta.DocumentationCount++
		} else {
			meta.MessageCount++
		}
	}
	meta.HasDocumentation = meta.DocumentationCount > 0
	meta.HasMessages = meta.MessageCount > 0

	chunks := make([]domain.KnowledgeChunk, 0, MaxChunks)
	processed := make(map[string]struct{})

	for _, hit := range hits {
		if hit.SourceKind == domain.SourceKindDocumentation {
			chunks = append(chunks, docChunk(hit))
		} else {
			key := hit.BucketKey()
			if _, seen := processed[key]; seen {
				continue
			}
			processed[key] = struct{}{}
			chunks = append(chunks, s.messageChunk(ctx, hit))
		}

		if len(chunks) >= MaxChunks {
			break
		}
	}

	return chunks, meta
}

// docChunk wraps a documentation hit directly; it is already synthesized
// and needs no context expansion.
func docChunk(hit *domain.KnowledgeHit) domain.KnowledgeChunk {
	return domain.KnowledgeChunk{
		ChannelName: "Documentation",
		Messages:    []domain.ContextMessage{singleHitMessage(hit)},
		Timestamp:   hit.CreatedAt,
		SourceKind:  domain.SourceKindDocumentation,
	}
}

// messageChunk expands a message hit into its surrounding conversation
// window. A failed or empty fetch degrades to the single hit message; the
// hit is never dropped.
func (s *RetrievalService) messageChunk(ctx context.Context, hit *domain.KnowledgeHit) domain.KnowledgeChunk {
	chunk := domain.KnowledgeChunk{
		ChannelID:   hit.ChannelID,
		ChannelName: hit.ChannelName,
		Timestamp:   hit.CreatedAt,
		SourceKind:  domain.SourceKindMessage,
	}
	if chunk.ChannelName == "" {
		chunk.ChannelName = "Unknown"
	}

	if hit.ChannelID != "" {
		contextMessages, err := s.messages.ContextWindow(ctx, hit.ChannelID, hit.CreatedAt, domain.ContextBucketWindow)
		if err != nil {
			log.Printf("retrieval: context window failed for channel %s: %v", hit.ChannelID, err)
		}
		if err == nil && len(contextMessages) > 0 {
			chunk.Messages = contextMessages
			return chunk
		}
	}

	chunk.Messages = []domain.ContextMessage{singleHitMessage(hit)}
	return chunk
}

func singleHitMessage(hit *domain.KnowledgeHit) domain.ContextMessage {
	return domain.ContextMessage{
		ID:        hit.ID,
		Content:   hit.Content,
		UserID:    hit.UserID,
		Username:  hit.Username,
		CreatedAt: hit.CreatedAt,
	}
}
