package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/openai"
	"github.com/cloo-solutions/recallai/internal/telemetry"
)

const (
	// NoAnswerSentinel is the exact token the model is instructed to emit
	// when the provided sources contain no relevant information.
	NoAnswerSentinel = "NO_RELEVANT_INFO"

	synthesisMaxTokens   = 300
	synthesisTemperature = 0.3
)

// ErrNoAnswer is returned when the model found no relevant information in
// the provided chunks.
var ErrNoAnswer = errors.New("no relevant information in sources")

const synthesisSystemPrompt = `You are a knowledge synthesizer for a team's chat history and documentation.

Given conversation fragments and/or previous answers that may span days/weeks, synthesize a clear answer.

Rules:
- Combine fragmented messages into coherent information
- Previous answers (documentation) are reliable but may be outdated - prefer recent messages if they contradict older docs
- Note when knowledge evolved over time (e.g., "Initially X, but later discovered Y")
- Cite who said what (briefly, like "according to Alice")
- If fragments don't fully answer, say what IS known and what's missing
- Be concise (2-4 sentences ideal)
- If there's genuinely no relevant info, respond with just: NO_RELEVANT_INFO
- Do NOT make up information - only use what's in the conversations/documentation`

// SynthesisService turns ranked knowledge chunks into a natural-language
// answer via a single completion call.
type SynthesisService struct {
	completions CompletionInterface
}

func NewSynthesisService(completions CompletionInterface) *SynthesisService {
	return &SynthesisService{completions: completions}
}

// FormatChunks renders chunks into the prompt block the model receives.
// Documentation chunks are labelled as previous answers; message chunks as
// conversations with their channel and date.
func FormatChunks(chunks []domain.KnowledgeChunk) string {
	parts := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		date := chunk.Timestamp.Format("Jan 2, 2006")

		if chunk.SourceKind == domain.SourceKindDocumentation {
			parts = append(parts, fmt.Sprintf("[Previous Answer %d] (%s):\n  %s", i+1, date, chunk.Messages[0].Content))
			continue
		}

		lines := make([]string, 0, len(chunk.Messages))
		for _, m := range chunk.Messages {
			lines = append(lines, fmt.Sprintf("  %s: %s", m.Username, m.Content))
		}
		parts = append(parts, fmt.Sprintf("[Conversation %d] #%s (%s):\n%s", i+1, chunk.ChannelName, date, strings.Join(lines, "\n")))
	}

	return strings.Join(parts, "\n\n")
}

// Synthesize asks the model to answer the query from the given chunks.
// Returns ErrNoAnswer when the model emits the no-answer sentinel or an
// empty response.
func (s *SynthesisService) Synthesize(ctx context.Context, query string, chunks []domain.KnowledgeChunk) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "SynthesisService.Synthesize", telemetry.SpanAttributes{
		Operation: "synthesize",
	})
	defer span.End()

	if s.completions == nil {
		return "", ErrNoAnswer
	}

	user := fmt.Sprintf("Question: %q\n\nRelevant sources:\n%s", query, FormatChunks(chunks))

	answer, err := s.completions.Complete(ctx, openai.CompletionRequest{
		System:      synthesisSystemPrompt,
		User:        user,
		MaxTokens:   synthesisMaxTokens,
		Temperature: synthesisTemperature,
	})
	if err != nil {
		telemetry.CaptureError(ctx, err)
		return "", fmt.Errorf("synthesis completion failed: %w", err)
	}

	if answer == "" || answer == NoAnswerSentinel {
		return "", ErrNoAnswer
	}

	return answer, nil
}
