package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFormatChunks_Conversation(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	chunks := []domain.KnowledgeChunk{
		{
			ChannelName: "infra",
			SourceKind:  domain.SourceKindMessage,
			Timestamp:   at,
			Messages: []domain.ContextMessage{
				{Username: "alice", Content: "the staging DB moved to eu-west-1"},
				{Username: "bob", Content: "thanks, updating the runbook"},
			},
		},
	}

	got := FormatChunks(chunks)

	want := "[Conversation 1] #infra (Mar 14, 2025):\n  alice: the staging DB moved to eu-west-1\n  bob: thanks, updating the runbook"
	assert.Equal(t, want, got)
}

func TestFormatChunks_PreviousAnswer(t *testing.T) {
	at := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	chunks := []domain.KnowledgeChunk{
		{
			ChannelName: "Documentation",
			SourceKind:  domain.SourceKindDocumentation,
			Timestamp:   at,
			Messages: []domain.ContextMessage{
				{Username: "Documentation", Content: "Use the shared VPN profile."},
			},
		},
	}

	got := FormatChunks(chunks)

	assert.Equal(t, "[Previous Answer 1] (Jan 2, 2025):\n  Use the shared VPN profile.", got)
}

func TestFormatChunks_MixedSeparatedByBlankLine(t *testing.T) {
	at := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	chunks := []domain.KnowledgeChunk{
		{
			SourceKind: domain.SourceKindDocumentation,
			Timestamp:  at,
			Messages:   []domain.ContextMessage{{Content: "doc answer"}},
		},
		{
			ChannelName: "general",
			SourceKind:  domain.SourceKindMessage,
			Timestamp:   at,
			Messages:    []domain.ContextMessage{{Username: "alice", Content: "hi"}},
		},
	}

	got := FormatChunks(chunks)

	assert.Contains(t, got, "[Previous Answer 1]")
	assert.Contains(t, got, "\n\n[Conversation 2] #general")
}

func TestSynthesisService_Synthesize_Success(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewSynthesisService(mockClient)

	chunks := []domain.KnowledgeChunk{
		{
			ChannelName: "general",
			SourceKind:  domain.SourceKindMessage,
			Timestamp:   time.Now(),
			Messages:    []domain.ContextMessage{{Username: "alice", Content: "keys rotate monthly"}},
		},
	}

	mockClient.On("Complete", mock.Anything, mock.MatchedBy(func(req openai.CompletionRequest) bool {
		return req.MaxTokens == synthesisMaxTokens &&
			req.Temperature == float32(synthesisTemperature) &&
			req.System == synthesisSystemPrompt
	})).Return("Keys rotate monthly, according to alice.", nil)

	answer, err := svc.Synthesize(context.Background(), "how often do keys rotate", chunks)

	assert.NoError(t, err)
	assert.Equal(t, "Keys rotate monthly, according to alice.", answer)
	mockClient.AssertExpectations(t)
}

func TestSynthesisService_Synthesize_Sentinel(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewSynthesisService(mockClient)

	mockClient.On("Complete", mock.Anything, mock.Anything).Return(NoAnswerSentinel, nil)

	answer, err := svc.Synthesize(context.Background(), "how often do keys rotate", nil)

	assert.ErrorIs(t, err, ErrNoAnswer)
	assert.Empty(t, answer)
}

func TestSynthesisService_Synthesize_EmptyResponse(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewSynthesisService(mockClient)

	mockClient.On("Complete", mock.Anything, mock.Anything).Return("", nil)

	answer, err := svc.Synthesize(context.Background(), "how often do keys rotate", nil)

	assert.ErrorIs(t, err, ErrNoAnswer)
	assert.Empty(t, answer)
}

func TestSynthesisService_Synthesize_CompletionError(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewSynthesisService(mockClient)

	mockClient.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))

	answer, err := svc.Synthesize(context.Background(), "how often do keys rotate", nil)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoAnswer)
	assert.Empty(t, answer)
}

func TestSynthesisService_Synthesize_NilCompletions(t *testing.T) {
	svc := NewSynthesisService(nil)

	answer, err := svc.Synthesize(context.Background(), "how often do keys rotate", nil)

	assert.ErrorIs(t, err, ErrNoAnswer)
	assert.Empty(t, answer)
}

func TestSynthesisService_Synthesize_QuestionQuotedInPrompt(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewSynthesisService(mockClient)

	var captured openai.CompletionRequest
	mockClient.On("Complete", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(openai.CompletionRequest)
	}).Return("an answer", nil)

	_, err := svc.Synthesize(context.Background(), `what does "drain" mean here`, nil)

	assert.NoError(t, err)
	assert.Contains(t, captured.User, `Question: "what does \"drain\" mean here"`)
	assert.Contains(t, captured.User, "Relevant sources:")
}
