package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/recallai/internal/api"
	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/go-chi/chi/v5"
)

type DocumentationService interface {
	GetByID(ctx context.Context, id string) (*domain.DocumentationEntry, error)
	List(ctx context.Context, input service.ListDocumentationInput) (*service.ListDocumentationOutput, error)
}

type DocumentationHandler struct {
	svc DocumentationService
}

func NewDocumentationHandler(svc DocumentationService) *DocumentationHandler {
	return &DocumentationHandler{svc: svc}
}

type SourceRefResponse struct {
	MessageID   string `json:"id"`
	ChannelID   string `json:"channel_id,omitempty"`
	ChannelName string `json:"channel"`
	Username    string `json:"username"`
}

type DocumentationResponse struct {
	ID             string              `json:"id"`
	Question       string              `json:"question"`
	Answer         string              `json:"answer"`
	SourceMessages []SourceRefResponse `json:"source_messages"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      string              `json:"updated_at"`
}

func documentationToResponse(d *domain.DocumentationEntry) *DocumentationResponse {
	sources := make([]SourceRefResponse, 0, len(d.SourceMessages))
	for _, s := range d.SourceMessages {
		sources = append(sources, SourceRefResponse{
			MessageID:   s.MessageID,
			ChannelID:   s.ChannelID,
			ChannelName: s.ChannelName,
			Username:    s.Username,
		})
	}
	return &DocumentationResponse{
		ID:             d.ID,
		Question:       d.Question,
		Answer:         d.Answer,
		SourceMessages: sources,
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *DocumentationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	entry, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentationToResponse(entry))
}

type ListDocumentationResponse struct {
	Items   []*DocumentationResponse `json:"items"`
	Cursor  string                   `json:"cursor,omitempty"`
	HasMore bool                     `json:"has_more"`
}

func (h *DocumentationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.svc.List(r.Context(), service.ListDocumentationInput{
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentationResponse, 0, len(result.Items))
	for _, d := range result.Items {
		items = append(items, documentationToResponse(d))
	}

	api.Success(w, http.StatusOK, ListDocumentationResponse{
		Items:   items,
		Cursor:  result.Cursor,
		HasMore: result.HasMore,
	})
}
