package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cloo-solutions/recallai/internal/api"
	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/service"
)

type PreflightService interface {
	CheckQuestion(ctx context.Context, text string) domain.Verdict
	Answer(ctx context.Context, query string) (*service.AnswerResult, error)
}

type PreflightHandler struct {
	svc PreflightService
}

func NewPreflightHandler(svc PreflightService) *PreflightHandler {
	return &PreflightHandler{svc: svc}
}

type CheckQuestionRequest struct {
	Text string `json:"text"`
}

type CheckQuestionResponse struct {
	IsQuestion bool   `json:"is_question"`
	Confidence string `json:"confidence"`
	Method     string `json:"method"`
}

// Check classifies a piece of text as question or not. Never errors on
// classification problems; the verdict carries the error method instead.
func (h *PreflightHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	verdict := h.svc.CheckQuestion(r.Context(), req.Text)

	api.Success(w, http.StatusOK, CheckQuestionResponse{
		IsQuestion: verdict.IsQuestion,
		Confidence: string(verdict.Confidence),
		Method:     string(verdict.Method),
	})
}

type AnswerRequest struct {
	Query string `json:"query"`
}

type TimeRangeResponse struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

type AnswerResponse struct {
	HasAnswer   bool               `json:"has_answer"`
	Answer      string             `json:"answer,omitempty"`
	SourceCount int                `json:"source_count,omitempty"`
	SourceType  string             `json:"source_type,omitempty"`
	TimeRange   *TimeRangeResponse `json:"time_range,omitempty"`
}

// Answer attempts to answer a query from the knowledge base.
func (h *PreflightHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Answer(r.Context(), req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := AnswerResponse{
		HasAnswer:   result.HasAnswer,
		Answer:      result.Answer,
		SourceCount: result.SourceCount,
		SourceType:  string(result.SourceType),
	}
	if result.TimeRange != nil {
		resp.TimeRange = &TimeRangeResponse{
			Earliest: result.TimeRange.Earliest.UTC().Format(time.RFC3339),
			Latest:   result.TimeRange.Latest.UTC().Format(time.RFC3339),
		}
	}
	if !result.HasAnswer {
		resp.SourceType = ""
	}

	api.Success(w, http.StatusOK, resp)
}
