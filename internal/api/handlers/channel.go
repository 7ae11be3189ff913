package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cloo-solutions/recallai/internal/api"
	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/go-chi/chi/v5"
)

type ChannelService interface {
	Create(ctx context.Context, input service.CreateChannelInput) (*domain.Channel, error)
	GetByID(ctx context.Context, id string) (*domain.Channel, error)
	List(ctx context.Context) ([]*domain.Channel, error)
}

type ChannelHandler struct {
	svc ChannelService
}

func NewChannelHandler(svc ChannelService) *ChannelHandler {
	return &ChannelHandler{svc: svc}
}

type CreateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ChannelResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func channelToResponse(c *domain.Channel) *ChannelResponse {
	return &ChannelResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	channel, err := h.svc.Create(r.Context(), service.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, channelToResponse(channel))
}

func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	channel, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, channelToResponse(channel))
}

func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	channels, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ChannelResponse, 0, len(channels))
	for _, c := range channels {
		items = append(items, channelToResponse(c))
	}

	api.Success(w, http.StatusOK, items)
}
