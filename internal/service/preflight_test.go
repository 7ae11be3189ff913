package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClassifier mocks the question classifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string) domain.Verdict {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.Verdict)
}

// MockKnowledgeSearch mocks the retrieval service
type MockKnowledgeSearch struct {
	mock.Mock
}

func (m *MockKnowledgeSearch) Search(ctx context.Context, query string) ([]domain.KnowledgeChunk, domain.SearchMetadata) {
	args := m.Called(ctx, query)
	var chunks []domain.KnowledgeChunk
	if args.Get(0) != nil {
		chunks = args.Get(0).([]domain.KnowledgeChunk)
	}
	return chunks, args.Get(1).(domain.SearchMetadata)
}

// MockSynthesizer mocks the synthesis service
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, query string, chunks []domain.KnowledgeChunk) (string, error) {
	args := m.Called(ctx, query, chunks)
	return args.String(0), args.Error(1)
}

// MockDocSaver mocks the documentation writer
type MockDocSaver struct {
	mock.Mock
	saved chan struct{}
}

func NewMockDocSaver() *MockDocSaver {
	return &MockDocSaver{saved: make(chan struct{}, 1)}
}

func (m *MockDocSaver) Save(ctx context.Context, question, answer string, sources []domain.SourceRef) error {
	args := m.Called(ctx, question, answer, sources)
	m.saved <- struct{}{}
	return args.Error(0)
}

func messageChunkAt(channelID string, at time.Time, messages ...domain.ContextMessage) domain.KnowledgeChunk {
	return domain.KnowledgeChunk{
		ChannelID:   channelID,
		ChannelName: "general",
		SourceKind:  domain.SourceKindMessage,
		Timestamp:   at,
		Messages:    messages,
	}
}

func TestPreflightService_CheckQuestion(t *testing.T) {
	mockClassifier := new(MockClassifier)
	svc := NewPreflightService(mockClassifier, nil, nil, nil)

	want := domain.Verdict{IsQuestion: true, Confidence: domain.ConfidenceHigh, Method: domain.MethodRegex}
	mockClassifier.On("Classify", mock.Anything, "how do I deploy?").Return(want)

	got := svc.CheckQuestion(context.Background(), "how do I deploy?")

	assert.Equal(t, want, got)
}

func TestPreflightService_Answer_QueryTooShort(t *testing.T) {
	mockSearch := new(MockKnowledgeSearch)
	svc := NewPreflightService(new(MockClassifier), mockSearch, new(MockSynthesizer), nil)

	result, err := svc.Answer(context.Background(), "short")

	require.NoError(t, err)
	assert.False(t, result.HasAnswer)
	mockSearch.AssertNotCalled(t, "Search")
}

func TestPreflightService_Answer_NoChunks(t *testing.T) {
	mockSearch := new(MockKnowledgeSearch)
	mockSynth := new(MockSynthesizer)
	svc := NewPreflightService(new(MockClassifier), mockSearch, mockSynth, nil)

	mockSearch.On("Search", mock.Anything, mock.Anything).Return(nil, domain.SearchMetadata{})

	result, err := svc.Answer(context.Background(), "how do we rotate the signing keys")

	require.NoError(t, err)
	assert.False(t, result.HasAnswer)
	mockSynth.AssertNotCalled(t, "Synthesize")
}

func TestPreflightService_Answer_NoAnswerFromModel(t *testing.T) {
	mockSearch := new(MockKnowledgeSearch)
	mockSynth := new(MockSynthesizer)
	mockSaver := NewMockDocSaver()
	svc := NewPreflightService(new(MockClassifier), mockSearch, mockSynth, mockSaver)

	at := time.Now()
	chunks := []domain.KnowledgeChunk{messageChunkAt("chan-1", at, domain.ContextMessage{ID: "msg-1", CreatedAt: at})}

	mockSearch.On("Search", mock.Anything, mock.Anything).Return(chunks, domain.SearchMetadata{HasMessages: true, MessageCount: 1})
	mockSynth.On("Synthesize", mock.Anything, mock.Anything, chunks).Return("", ErrNoAnswer)

	result, err := svc.Answer(context.Background(), "how do we rotate the signing keys")

	require.NoError(t, err)
	assert.False(t, result.HasAnswer)
	mockSaver.AssertNotCalled(t, "Save")
}

func TestPreflightService_Answer_SynthesisErrorFailsSoft(t *testing.T) {
	mockSearch := new(MockKnowledgeSearch)
	mockSynth := new(MockSynthesizer)
	svc := NewPreflightService(new(MockClassifier), mockSearch, mockSynth, nil)

	at := time.Now()
	chunks := []domain.KnowledgeChunk{messageChunkAt("chan-1", at, domain.ContextMessage{ID: "msg-1", CreatedAt: at})}

	mockSearch.On("Search", mock.Anything, mock.Anything).Return(chunks, domain.SearchMetadata{HasMessages: true, MessageCount: 1})
	mockSynth.On("Synthesize", mock.Anything, mock.Anything, chunks).Return("", errors.New("provider exploded"))

	result, err := svc.Answer(context.Background(), "how do we rotate the signing keys")

	require.NoError(t, err)
	assert.False(t, result.HasAnswer)
}

func TestPreflightService_Answer_Success(t *testing.T) {
	mockSearch := new(MockKnowledgeSearch)
	mockSynth := new(MockSynthesizer)
	mockSaver := NewMockDocSaver()
	svc := NewPreflightService(new(MockClassifier), mockSearch, mockSynth, mockSaver)

	early := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, 5, 3, 17, 0, 0, 0, time.UTC)
	chunks := []domain.KnowledgeChunk{
		messageChunkAt("chan-1", early,
			domain.ContextMessage{ID: "msg-1", Username: "alice", CreatedAt: early},
			domain.ContextMessage{ID: "msg-2", Username: "bob", CreatedAt: late},
		),
	}
	meta := domain.SearchMetadata{HasMessages: true, MessageCount: 2}

	mockSearch.On("Search", mock.Anything, "how do we rotate the signing keys").Return(chunks, meta)
	mockSynth.On("Synthesize", mock.Anything, "how do we rotate the signing keys", chunks).Return("Monthly, per alice.", nil)
	mockSaver.On("Save", mock.Anything, "how do we rotate the signing keys", "Monthly, per alice.", mock.Anything).Return(nil)

	result, err := svc.Answer(context.Background(), "how do we rotate the signing keys")

	require.NoError(t, err)
	assert.True(t, result.HasAnswer)
	assert.Equal(t, "Monthly, per alice.", result.Answer)
	assert.Equal(t, 1, result.SourceCount)
	assert.Equal(t, domain.SourceTypeMessages, result.SourceType)
	require.NotNil(t, result.TimeRange)
	assert.Equal(t, early, result.TimeRange.Earliest)
	assert.Equal(t, late, result.TimeRange.Latest)

	select {
	case <-mockSaver.saved:
	case <-time.After(time.Second):
		t.Fatal("documentation save was not invoked")
	}
	mockSaver.AssertExpectations(t)
}

func TestPreflightService_Answer_CombinedSourceType(t *testing.T) {
	mockSearch := new(MockKnowledgeSearch)
	mockSynth := new(MockSynthesizer)
	svc := NewPreflightService(new(MockClassifier), mockSearch, mockSynth, nil)

	at := time.Now()
	chunks := []domain.KnowledgeChunk{
		{SourceKind: domain.SourceKindDocumentation, Timestamp: at, Messages: []domain.ContextMessage{{CreatedAt: at}}},
		messageChunkAt("chan-1", at, domain.ContextMessage{ID: "msg-1", CreatedAt: at}),
	}
	meta := domain.SearchMetadata{HasMessages: true, HasDocumentation: true, MessageCount: 1, DocumentationCount: 1}

	mockSearch.On("Search", mock.Anything, mock.Anything).Return(chunks, meta)
	mockSynth.On("Synthesize", mock.Anything, mock.Anything, chunks).Return("combined answer", nil)

	result, err := svc.Answer(context.Background(), "how do we rotate the signing keys")

	require.NoError(t, err)
	assert.Equal(t, domain.SourceTypeCombined, result.SourceType)
	assert.Equal(t, 2, result.SourceCount)
}

func TestPreflightService_Answer_SaveFailureDoesNotAffectResult(t *testing.T) {
	mockSearch := new(MockKnowledgeSearch)
	mockSynth := new(MockSynthesizer)
	mockSaver := NewMockDocSaver()
	svc := NewPreflightService(new(MockClassifier), mockSearch, mockSynth, mockSaver)

	at := time.Now()
	chunks := []domain.KnowledgeChunk{messageChunkAt("chan-1", at, domain.ContextMessage{ID: "msg-1", CreatedAt: at})}

	mockSearch.On("Search", mock.Anything, mock.Anything).Return(chunks, domain.SearchMetadata{HasMessages: true, MessageCount: 1})
	mockSynth.On("Synthesize", mock.Anything, mock.Anything, chunks).Return("an answer", nil)
	mockSaver.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	result, err := svc.Answer(context.Background(), "how do we rotate the signing keys")

	require.NoError(t, err)
	assert.True(t, result.HasAnswer)

	select {
	case <-mockSaver.saved:
	case <-time.After(time.Second):
		t.Fatal("documentation save was not invoked")
	}
}

func TestSourceRefs_MessageChunksOnly(t *testing.T) {
	at := time.Now()
	chunks := []domain.KnowledgeChunk{
		{SourceKind: domain.SourceKindDocumentation, Timestamp: at, Messages: []domain.ContextMessage{{ID: "doc-1", CreatedAt: at}}},
		{
			ChannelID:   "chan-1",
			ChannelName: "general",
			SourceKind:  domain.SourceKindMessage,
			Timestamp:   at,
			Messages: []domain.ContextMessage{
				{ID: "msg-1", Username: "alice", CreatedAt: at},
				{ID: "msg-2", Username: "bob", CreatedAt: at},
			},
		},
	}

	refs := sourceRefs(chunks)

	require.Len(t, refs, 2)
	assert.Equal(t, "msg-1", refs[0].MessageID)
	assert.Equal(t, "chan-1", refs[0].ChannelID)
	assert.Equal(t, "general", refs[0].ChannelName)
	assert.Equal(t, "alice", refs[0].Username)
	assert.Equal(t, "msg-2", refs[1].MessageID)
}

func TestTimeRangeOf_Empty(t *testing.T) {
	assert.Nil(t, timeRangeOf(nil))
}
