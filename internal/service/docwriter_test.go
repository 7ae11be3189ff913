package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocRepo mocks DocumentationRepositoryInterface
type MockDocRepo struct {
	mock.Mock
}

func (m *MockDocRepo) Create(ctx context.Context, d *domain.DocumentationEntry) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocRepo) GetByID(ctx context.Context, id string) (*domain.DocumentationEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentationEntry), args.Error(1)
}

func (m *MockDocRepo) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentationPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentationPageResult), args.Error(1)
}

func TestDocumentationWriter_Save(t *testing.T) {
	mockRepo := new(MockDocRepo)
	mockEmbeddings := new(MockEmbeddingClient)
	svc := NewDocumentationWriterServiceWithUUIDGen(mockRepo, mockEmbeddings, &fixedUUIDGen{ids: []string{"doc-1"}})

	embedding := testEmbedding()
	sources := []domain.SourceRef{{MessageID: "msg-1", ChannelID: "chan-1", Username: "alice"}}
	mockEmbeddings.On("GenerateEmbedding", mock.Anything, "how do we rotate keys?").Return(embedding, nil)

	var saved *domain.DocumentationEntry
	mockRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.DocumentationEntry)
	}).Return(nil)

	err := svc.Save(context.Background(), "how do we rotate keys?", "Monthly, per the runbook.", sources)

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "doc-1", saved.ID)
	assert.Equal(t, "how do we rotate keys?", saved.Question)
	assert.Equal(t, "Monthly, per the runbook.", saved.Answer)
	assert.Equal(t, sources, saved.SourceMessages)
	assert.Equal(t, embedding, saved.Embedding)
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)
	mockEmbeddings.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestDocumentationWriter_Save_EmbeddingFailure(t *testing.T) {
	mockRepo := new(MockDocRepo)
	mockEmbeddings := new(MockEmbeddingClient)
	svc := NewDocumentationWriterService(mockRepo, mockEmbeddings)

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).
		Return(nil, errors.New("rate limited"))

	err := svc.Save(context.Background(), "some question", "some answer", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed question")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestDocumentationWriter_Save_InvalidEntry(t *testing.T) {
	mockRepo := new(MockDocRepo)
	mockEmbeddings := new(MockEmbeddingClient)
	svc := NewDocumentationWriterService(mockRepo, mockEmbeddings)

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, "").Return(testEmbedding(), nil)

	err := svc.Save(context.Background(), "", "answer without a question", nil)

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestDocumentationWriter_Save_RepositoryError(t *testing.T) {
	mockRepo := new(MockDocRepo)
	mockEmbeddings := new(MockEmbeddingClient)
	svc := NewDocumentationWriterService(mockRepo, mockEmbeddings)

	mockEmbeddings.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding(), nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	err := svc.Save(context.Background(), "valid question", "valid answer", nil)

	assert.Error(t, err)
}
