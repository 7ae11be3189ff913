package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentationService mocks the documentation read service
type MockDocumentationService struct {
	mock.Mock
}

func (m *MockDocumentationService) GetByID(ctx context.Context, id string) (*domain.DocumentationEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentationEntry), args.Error(1)
}

func (m *MockDocumentationService) List(ctx context.Context, input service.ListDocumentationInput) (*service.ListDocumentationOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentationOutput), args.Error(1)
}

func TestDocumentationHandler_Get(t *testing.T) {
	mockSvc := new(MockDocumentationService)
	handler := NewDocumentationHandler(mockSvc)

	entry := &domain.DocumentationEntry{
		ID:       "doc-1",
		Question: "how do we rotate keys?",
		Answer:   "Monthly, per the runbook.",
		SourceMessages: []domain.SourceRef{
			{MessageID: "msg-1", ChannelID: "chan-1", ChannelName: "ops", Username: "alice"},
		},
		CreatedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	mockSvc.On("GetByID", mock.Anything, "doc-1").Return(entry, nil)

	router := chi.NewRouter()
	router.Get("/documentation/{id}", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/documentation/doc-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp DocumentationResponse
	decodeData(t, w.Body, &resp)
	assert.Equal(t, "doc-1", resp.ID)
	assert.Equal(t, "how do we rotate keys?", resp.Question)
	require.Len(t, resp.SourceMessages, 1)
	assert.Equal(t, "ops", resp.SourceMessages[0].ChannelName)
	assert.Equal(t, "alice", resp.SourceMessages[0].Username)
	assert.Equal(t, "2025-05-01T09:00:00Z", resp.CreatedAt)
}

func TestDocumentationHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentationService)
	handler := NewDocumentationHandler(mockSvc)

	mockSvc.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrDocumentationNotFound)

	router := chi.NewRouter()
	router.Get("/documentation/{id}", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/documentation/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentationHandler_List(t *testing.T) {
	mockSvc := new(MockDocumentationService)
	handler := NewDocumentationHandler(mockSvc)

	out := &service.ListDocumentationOutput{
		Items: []*domain.DocumentationEntry{
			{ID: "doc-1", Question: "q1", Answer: "a1", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		},
		Cursor:  "next-token",
		HasMore: true,
	}
	mockSvc.On("List", mock.Anything, service.ListDocumentationInput{
		Cursor: "prev-token",
		Limit:  5,
	}).Return(out, nil)

	req := httptest.NewRequest(http.MethodGet, "/documentation?limit=5&cursor=prev-token", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ListDocumentationResponse
	decodeData(t, w.Body, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "doc-1", resp.Items[0].ID)
	assert.Equal(t, "next-token", resp.Cursor)
	assert.True(t, resp.HasMore)
}

func TestDocumentationHandler_List_InvalidLimit(t *testing.T) {
	mockSvc := new(MockDocumentationService)
	handler := NewDocumentationHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/documentation?limit=-1", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "List")
}
