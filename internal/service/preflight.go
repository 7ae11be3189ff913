package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/telemetry"
)

// QuestionClassifierInterface gates queries before retrieval cost is spent.
type QuestionClassifierInterface interface {
	Classify(ctx context.Context, text string) domain.Verdict
}

// KnowledgeSearchInterface retrieves ranked evidence for a query.
type KnowledgeSearchInterface interface {
	Search(ctx context.Context, query string) ([]domain.KnowledgeChunk, domain.SearchMetadata)
}

// AnswerSynthesizerInterface produces an answer from retrieved chunks.
type AnswerSynthesizerInterface interface {
	Synthesize(ctx context.Context, query string, chunks []domain.KnowledgeChunk) (string, error)
}

// DocumentationSaverInterface persists a successful synthesis.
type DocumentationSaverInterface interface {
	Save(ctx context.Context, question, answer string, sources []domain.SourceRef) error
}

// TimeRange spans the oldest and newest evidence behind an answer.
type TimeRange struct {
	Earliest time.Time
	Latest   time.Time
}

// AnswerResult is the outcome of a preflight answer attempt.
type AnswerResult struct {
	HasAnswer   bool
	Answer      string
	SourceCount int
	SourceType  domain.SourceType
	TimeRange   *TimeRange
}

var noAnswer = &AnswerResult{HasAnswer: false}

// PreflightService runs the full pipeline: classification gate, retrieval,
// synthesis, and the asynchronous documentation write-back. The whole
// pipeline fails soft: any stage error degrades to a "no answer" result.
type PreflightService struct {
	classifier QuestionClassifierInterface
	retrieval  KnowledgeSearchInterface
	synthesis  AnswerSynthesizerInterface
	docWriter  DocumentationSaverInterface
}

func NewPreflightService(
	classifier QuestionClassifierInterface,
	retrieval KnowledgeSearchInterface,
	synthesis AnswerSynthesizerInterface,
	docWriter DocumentationSaverInterface,
) *PreflightService {
	return &PreflightService{
		classifier: classifier,
		retrieval:  retrieval,
		synthesis:  synthesis,
		docWriter:  docWriter,
	}
}

// CheckQuestion classifies a piece of text without touching the knowledge
// store. Used by clients to decide whether to offer an answer attempt.
func (s *PreflightService) CheckQuestion(ctx context.Context, text string) domain.Verdict {
	return s.classifier.Classify(ctx, text)
}

// Answer attempts to answer the query from the knowledge base. A successful
// answer is written back to documentation in the background; the write-back
// outlives the request and never blocks or fails the response.
func (s *PreflightService) Answer(ctx context.Context, query string) (*AnswerResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "PreflightService.Answer", telemetry.SpanAttributes{
		Operation: "answer",
	})
	defer span.End()

	if len(query) < MinQueryLength {
		return noAnswer, nil
	}

	chunks, meta := s.retrieval.Search(ctx, query)
	if len(chunks) == 0 {
		return noAnswer, nil
	}

	answer, err := s.synthesis.Synthesize(ctx, query, chunks)
	if err != nil {
		if !errors.Is(err, ErrNoAnswer) {
			log.Printf("preflight: synthesis failed: %v", err)
			telemetry.CaptureError(ctx, err)
		}
		return noAnswer, nil
	}

	result := &AnswerResult{
		HasAnswer:   true,
		Answer:      answer,
		SourceCount: len(chunks),
		SourceType:  domain.SourceTypeFor(meta),
		TimeRange:   timeRangeOf(chunks),
	}

	s.saveInBackground(ctx, query, answer, sourceRefs(chunks))

	return result, nil
}

// saveInBackground detaches the documentation write from the request
// lifecycle: the context keeps its values for tracing but loses its
// cancellation, so a client disconnect cannot abort the save.
func (s *PreflightService) saveInBackground(ctx context.Context, question, answer string, sources []domain.SourceRef) {
	if s.docWriter == nil {
		return
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.docWriter.Save(bg, question, answer, sources); err != nil {
			log.Printf("preflight: background documentation save failed: %v", err)
			telemetry.CaptureError(bg, err)
		}
	}()
}

// timeRangeOf spans all messages across all chunks, documentation included.
func timeRangeOf(chunks []domain.KnowledgeChunk) *TimeRange {
	var tr *TimeRange
	for _, chunk := range chunks {
		for _, m := range chunk.Messages {
			if tr == nil {
				tr = &TimeRange{Earliest: m.CreatedAt, Latest: m.CreatedAt}
				continue
			}
			if m.CreatedAt.Before(tr.Earliest) {
				tr.Earliest = m.CreatedAt
			}
			if m.CreatedAt.After(tr.Latest) {
				tr.Latest = m.CreatedAt
			}
		}
	}
	return tr
}

// sourceRefs collects descriptors for every message-sourced context
// message; documentation chunks are already persisted and are not cited as
// sources again.
func sourceRefs(chunks []domain.KnowledgeChunk) []domain.SourceRef {
	var refs []domain.SourceRef
	for _, chunk := range chunks {
		if chunk.SourceKind != domain.SourceKindMessage {
			continue
		}
		for _, m := range chunk.Messages {
			refs = append(refs, domain.SourceRef{
				MessageID:   m.ID,
				ChannelID:   chunk.ChannelID,
				ChannelName: chunk.ChannelName,
				Username:    m.Username,
			})
		}
	}
	return refs
}
