package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCompletionClient mocks the completion client
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, req openai.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestClassifierService_Classify_TooShort(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewClassifierService(mockClient)

	for _, text := range []string{"", "a", "ok"} {
		verdict := svc.Classify(context.Background(), text)

		assert.False(t, verdict.IsQuestion)
		assert.Equal(t, domain.ConfidenceHigh, verdict.Confidence)
		assert.Equal(t, domain.MethodLength, verdict.Method)
	}

	mockClient.AssertNotCalled(t, "Complete")
}

func TestClassifierService_Classify_DefiniteQuestions(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewClassifierService(mockClient)

	texts := []string{
		"does the deploy script support rollbacks?",
		"how do I configure the staging environment",
		"what is the retention policy for logs",
		"where can I find the oncall schedule",
		"why does the build fail on main",
	}

	for _, text := range texts {
		verdict := svc.Classify(context.Background(), text)

		assert.True(t, verdict.IsQuestion, "expected question: %q", text)
		assert.Equal(t, domain.ConfidenceHigh, verdict.Confidence)
		assert.Equal(t, domain.MethodRegex, verdict.Method)
	}

	mockClient.AssertNotCalled(t, "Complete")
}

func TestClassifierService_Classify_DefiniteNonQuestions(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewClassifierService(mockClient)

	texts := []string{
		"thanks",
		"sounds good",
		"hey everyone, standup in five minutes",
		"@alice please review my PR",
		":shipit:",
	}

	for _, text := range texts {
		verdict := svc.Classify(context.Background(), text)

		assert.False(t, verdict.IsQuestion, "expected non-question: %q", text)
		assert.Equal(t, domain.ConfidenceHigh, verdict.Confidence)
		assert.Equal(t, domain.MethodRegex, verdict.Method)
	}

	mockClient.AssertNotCalled(t, "Complete")
}

func TestClassifierService_Classify_NonQuestionWinsOverQuestionMark(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewClassifierService(mockClient)

	// A greeting with a trailing question mark is still a greeting.
	verdict := svc.Classify(context.Background(), "hey?")

	assert.False(t, verdict.IsQuestion)
	assert.Equal(t, domain.MethodRegex, verdict.Method)
	mockClient.AssertNotCalled(t, "Complete")
}

func TestClassifierService_Classify_ShortUnmatchedText(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewClassifierService(mockClient)

	// Longer than the raw minimum but under the short-text cutoff, and
	// matching no pattern: dismissed without the model.
	verdict := svc.Classify(context.Background(), "deploy done")

	assert.False(t, verdict.IsQuestion)
	assert.Equal(t, domain.ConfidenceHigh, verdict.Confidence)
	assert.Equal(t, domain.MethodRegex, verdict.Method)
	mockClient.AssertNotCalled(t, "Complete")
}

func TestClassifierService_Classify_UncertainGoesToModel(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewClassifierService(mockClient)

	text := "anyone around who knows the VPN setup"

	mockClient.On("Complete", mock.Anything, mock.MatchedBy(func(req openai.CompletionRequest) bool {
		return req.User == text && req.MaxTokens == classifierMaxTokens && req.Temperature == 0
	})).Return("YES", nil)

	verdict := svc.Classify(context.Background(), text)

	assert.True(t, verdict.IsQuestion)
	assert.Equal(t, domain.ConfidenceMedium, verdict.Confidence)
	assert.Equal(t, domain.MethodAI, verdict.Method)
	mockClient.AssertExpectations(t)
}

func TestClassifierService_Classify_ModelSaysNo(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewClassifierService(mockClient)

	mockClient.On("Complete", mock.Anything, mock.Anything).Return("NO", nil)

	verdict := svc.Classify(context.Background(), "I was wondering about nothing in particular today")

	assert.False(t, verdict.IsQuestion)
	assert.Equal(t, domain.ConfidenceMedium, verdict.Confidence)
	assert.Equal(t, domain.MethodAI, verdict.Method)
}

func TestClassifierService_Classify_ModelErrorFailsClosed(t *testing.T) {
	mockClient := new(MockCompletionClient)
	svc := NewClassifierService(mockClient)

	mockClient.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))

	verdict := svc.Classify(context.Background(), "anyone know how the release train works here")

	assert.False(t, verdict.IsQuestion)
	assert.Equal(t, domain.ConfidenceLow, verdict.Confidence)
	assert.Equal(t, domain.MethodError, verdict.Method)
}

func TestClassifierService_Classify_NilCompletionsFailsClosed(t *testing.T) {
	svc := NewClassifierService(nil)

	verdict := svc.Classify(context.Background(), "anyone know how the release train works here")

	assert.False(t, verdict.IsQuestion)
	assert.Equal(t, domain.ConfidenceLow, verdict.Confidence)
	assert.Equal(t, domain.MethodError, verdict.Method)
}

func TestQuickClassify_LongUnmatchedIsUncertain(t *testing.T) {
	verdict := quickClassify("the deployment pipeline seems slower than usual since the infra change last week")
	assert.Equal(t, quickUncertain, verdict)
}
