package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient mocks the embedding client
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockSearchRepo mocks the combined search repository
type MockSearchRepo struct {
	mock.Mock
}

func (m *MockSearchRepo) CombinedSearch(ctx context.Context, embedding []float32, threshold, recencyWeight float64, limit int) ([]*domain.KnowledgeHit, error) {
	args := m.Called(ctx, embedding, threshold, recencyWeight, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeHit), args.Error(1)
}

// MockContextReader mocks the conversation context reader
type MockContextReader struct {
	mock.Mock
}

func (m *MockContextReader) ContextWindow(ctx context.Context, channelID string, ts time.Time, window time.Duration) ([]domain.ContextMessage, error) {
	args := m.Called(ctx, channelID, ts, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContextMessage), args.Error(1)
}

func testEmbedding() []float32 {
	embedding := make([]float32, 1536)
	for i := range embedding {
		embedding[i] = float32(i) * 0.001
	}
	return embedding
}

func messageHit(id, channelID string, at time.Time) *domain.KnowledgeHit {
	return &domain.KnowledgeHit{
		ID:          id,
		Content:     "content of " + id,
		SourceKind:  domain.SourceKindMessage,
		ChannelID:   channelID,
		ChannelName: "general",
		UserID:      "user-1",
		Username:    "alice",
		CreatedAt:   at,
	}
}

func TestRetrievalService_Search_QueryTooShort(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	chunks, meta := svc.Search(context.Background(), "too short")

	assert.Nil(t, chunks)
	assert.Equal(t, domain.SearchMetadata{}, meta)
	mockEmbeddings.AssertNotCalled(t, "GenerateEmbedding")
	mockSearch.AssertNotCalled(t, "CombinedSearch")
}

func TestRetrievalService_Search_EmbeddingErrorFailsSoft(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(nil, errors.New("api down"))

	chunks, meta := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Nil(t, chunks)
	assert.Equal(t, domain.SearchMetadata{}, meta)
	mockSearch.AssertNotCalled(t, "CombinedSearch")
}

func TestRetrievalService_Search_SearchErrorFailsSoft(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	embedding := testEmbedding()
	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(embedding, nil)
	mockSearch.On("CombinedSearch", mock.Anything, embedding, MatchThreshold, RecencyWeight, MatchCount).
		Return(nil, errors.New("connection lost"))

	chunks, meta := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Nil(t, chunks)
	assert.Equal(t, domain.SearchMetadata{}, meta)
}

func TestRetrievalService_Search_NoHits(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
	mockSearch.On("CombinedSearch", mock.Anything, mock.Anything, MatchThreshold, RecencyWeight, MatchCount).
		Return([]*domain.KnowledgeHit{}, nil)

	chunks, meta := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Nil(t, chunks)
	assert.Equal(t, domain.SearchMetadata{}, meta)
}

func TestRetrievalService_Search_BucketDedup(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	hits := []*domain.KnowledgeHit{
		messageHit("msg-1", "chan-1", base),
		messageHit("msg-2", "chan-1", base.Add(5*time.Minute)), // same burst
		messageHit("msg-3", "chan-1", base.Add(2*time.Hour)),   // later burst
	}

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
	mockSearch.On("CombinedSearch", mock.Anything, mock.Anything, MatchThreshold, RecencyWeight, MatchCount).
		Return(hits, nil)
	mockContext.On("ContextWindow", mock.Anything, "chan-1", mock.Anything, domain.ContextBucketWindow).
		Return([]domain.ContextMessage{{ID: "msg-1", Content: "hi", Username: "alice", CreatedAt: base}}, nil)

	chunks, meta := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Len(t, chunks, 2)
	assert.Equal(t, 3, meta.MessageCount)
	assert.True(t, meta.HasMessages)
	assert.False(t, meta.HasDocumentation)
	mockContext.AssertNumberOfCalls(t, "ContextWindow", 2)
}

func TestRetrievalService_Search_ChunkCap(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	var hits []*domain.KnowledgeHit
	for i := 0; i < 10; i++ {
		// Each hit lands in its own bucket so nothing dedups away.
		hits = append(hits, messageHit(fmt.Sprintf("msg-%d", i), "chan-1", base.Add(time.Duration(i)*time.Hour)))
	}

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
	mockSearch.On("CombinedSearch", mock.Anything, mock.Anything, MatchThreshold, RecencyWeight, MatchCount).
		Return(hits, nil)
	mockContext.On("ContextWindow", mock.Anything, "chan-1", mock.Anything, domain.ContextBucketWindow).
		Return(nil, errors.New("unavailable"))

	chunks, meta := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Len(t, chunks, MaxChunks)
	// Metadata spans the full hit list, not just what fit under the cap.
	assert.Equal(t, 10, meta.MessageCount)
}

func TestRetrievalService_Search_DocumentationChunk(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	docHit := &domain.KnowledgeHit{
		ID:         "doc-1",
		Content:    "Rotate keys via the admin console.",
		SourceKind: domain.SourceKindDocumentation,
		Username:   "Documentation",
		CreatedAt:  at,
	}

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
	mockSearch.On("CombinedSearch", mock.Anything, mock.Anything, MatchThreshold, RecencyWeight, MatchCount).
		Return([]*domain.KnowledgeHit{docHit}, nil)

	chunks, meta := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Len(t, chunks, 1)
	assert.Equal(t, domain.SourceKindDocumentation, chunks[0].SourceKind)
	assert.Equal(t, "Documentation", chunks[0].ChannelName)
	assert.Len(t, chunks[0].Messages, 1)
	assert.Equal(t, "Rotate keys via the admin console.", chunks[0].Messages[0].Content)
	assert.True(t, meta.HasDocumentation)
	assert.False(t, meta.HasMessages)
	// Documentation is already synthesized; no context expansion.
	mockContext.AssertNotCalled(t, "ContextWindow")
}

func TestRetrievalService_Search_ContextWindowExpansion(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	hit := messageHit("msg-1", "chan-1", at)
	window := []domain.ContextMessage{
		{ID: "msg-0", Content: "before", Username: "bob", CreatedAt: at.Add(-10 * time.Minute)},
		{ID: "msg-1", Content: "content of msg-1", Username: "alice", CreatedAt: at},
		{ID: "msg-2", Content: "after", Username: "bob", CreatedAt: at.Add(10 * time.Minute)},
	}

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
	mockSearch.On("CombinedSearch", mock.Anything, mock.Anything, MatchThreshold, RecencyWeight, MatchCount).
		Return([]*domain.KnowledgeHit{hit}, nil)
	mockContext.On("ContextWindow", mock.Anything, "chan-1", at, domain.ContextBucketWindow).
		Return(window, nil)

	chunks, _ := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Len(t, chunks, 1)
	assert.Equal(t, window, chunks[0].Messages)
	assert.Equal(t, "general", chunks[0].ChannelName)
}

func TestRetrievalService_Search_ContextFailureDegradesToSingleHit(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	hit := messageHit("msg-1", "chan-1", at)

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
	mockSearch.On("CombinedSearch", mock.Anything, mock.Anything, MatchThreshold, RecencyWeight, MatchCount).
		Return([]*domain.KnowledgeHit{hit}, nil)
	mockContext.On("ContextWindow", mock.Anything, "chan-1", at, domain.ContextBucketWindow).
		Return(nil, errors.New("timeout"))

	chunks, _ := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Len(t, chunks, 1)
	assert.Len(t, chunks[0].Messages, 1)
	assert.Equal(t, "msg-1", chunks[0].Messages[0].ID)
}

func TestRetrievalService_Search_DirectMessageHitSkipsContext(t *testing.T) {
	mockEmbeddings := new(MockEmbeddingClient)
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(mockEmbeddings, mockSearch, mockContext)

	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	hit := &domain.KnowledgeHit{
		ID:         "msg-1",
		Content:    "dm content",
		SourceKind: domain.SourceKindMessage,
		Username:   "alice",
		CreatedAt:  at,
	}

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
	mockSearch.On("CombinedSearch", mock.Anything, mock.Anything, MatchThreshold, RecencyWeight, MatchCount).
		Return([]*domain.KnowledgeHit{hit}, nil)

	chunks, _ := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Len(t, chunks, 1)
	assert.Equal(t, "Unknown", chunks[0].ChannelName)
	assert.Len(t, chunks[0].Messages, 1)
	mockContext.AssertNotCalled(t, "ContextWindow")
}

func TestRetrievalService_Search_NilEmbeddings(t *testing.T) {
	mockSearch := new(MockSearchRepo)
	mockContext := new(MockContextReader)
	svc := NewRetrievalService(nil, mockSearch, mockContext)

	chunks, meta := svc.Search(context.Background(), "how do we rotate the signing keys")

	assert.Nil(t, chunks)
	assert.Equal(t, domain.SearchMetadata{}, meta)
	mockSearch.AssertNotCalled(t, "CombinedSearch")
}
