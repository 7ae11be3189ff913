package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/recallai/internal/api"
	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/go-chi/chi/v5"
)

type MessageService interface {
	PostMessage(ctx context.Context, input service.PostMessageInput) (*domain.Message, error)
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	ListChannelMessages(ctx context.Context, input service.ListMessagesInput) (*service.ListMessagesOutput, error)
}

type MessageHandler struct {
	svc MessageService
}

func NewMessageHandler(svc MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type PostMessageRequest struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	ParentID  string `json:"parent_id"`
}

type MessageResponse struct {
	ID           string `json:"id"`
	ChannelID    string `json:"channel_id,omitempty"`
	UserID       string `json:"user_id"`
	Content      string `json:"content"`
	ParentID     string `json:"parent_id,omitempty"`
	ReplyCount   int    `json:"reply_count"`
	HasEmbedding bool   `json:"has_embedding"`
	CreatedAt    string `json:"created_at"`
}

func messageToResponse(m *domain.Message) *MessageResponse {
	return &MessageResponse{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		UserID:       m.UserID,
		Content:      m.Content,
		ParentID:     m.ParentID,
		ReplyCount:   m.ReplyCount,
		HasEmbedding: len(m.Embedding) > 0,
		CreatedAt:    m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		api.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	message, err := h.svc.PostMessage(r.Context(), service.PostMessageInput{
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
		Content:   req.Content,
		ParentID:  req.ParentID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, messageToResponse(message))
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	message, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, messageToResponse(message))
}

type ListMessagesResponse struct {
	Items   []*MessageResponse `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

func (h *MessageHandler) ListByChannel(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "id")
	if channelID == "" {
		api.Error(w, http.StatusBadRequest, "channel id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.svc.ListChannelMessages(r.Context(), service.ListMessagesInput{
		ChannelID: channelID,
		Cursor:    r.URL.Query().Get("cursor"),
		Limit:     limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*MessageResponse, 0, len(result.Items))
	for _, m := range result.Items {
		items = append(items, messageToResponse(m))
	}

	api.Success(w, http.StatusOK, ListMessagesResponse{
		Items:   items,
		Cursor:  result.Cursor,
		HasMore: result.HasMore,
	})
}
