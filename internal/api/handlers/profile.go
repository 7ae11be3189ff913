package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cloo-solutions/recallai/internal/api"
	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ProfileService interface {
	Create(ctx context.Context, username string) (*domain.Profile, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
}

type ProfileHandler struct {
	svc ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type CreateProfileRequest struct {
	Username string `json:"username"`
}

type ProfileResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

func profileToResponse(p *domain.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:        p.ID,
		Username:  p.Username,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" {
		api.Error(w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.svc.Create(r.Context(), req.Username)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, profileToResponse(profile))
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	profile, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, profileToResponse(profile))
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, profileToResponse(p))
	}

	api.Success(w, http.StatusOK, items)
}
