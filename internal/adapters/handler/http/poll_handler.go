package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/slotpoll/api/internal/core/domain"
	"github.com/slotpoll/api/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
	logger  *zap.Logger
}

func NewPollHandler(service ports.PollService, logger *zap.Logger) *PollHandler {
	return &PollHandler{
		service: service,
		logger:  logger,
	}
}

type createPollRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	OwnerID     string            `json:"ownerId"`
	Config      domain.PollConfig `json:"config"`
}

type createPollResponse struct {
	Message  string `json:"message"`
	PollID   string `json:"pollId"`
	ShareURL string `json:"shareUrl"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := ports.CreatePollInput{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		Config:      req.Config,
	}

	poll, err := h.service.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) || errors.Is(err, domain.ErrInvalidConfig) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("failed to create poll", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Message: "server error: could not create poll",
			Detail:  domain.ErrInternal.Error(),
		})
		return
	}

	respondJSON(w, http.StatusCreated, createPollResponse{
		Message:  "poll created successfully",
		PollID:   poll.ID.String(),
		ShareURL: fmt.Sprintf("/poll/%s", poll.ID),
	})
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing poll id")
		return
	}

	poll, err := h.service.GetPoll(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPollID) {
			respondError(w, http.StatusBadRequest, "invalid poll id format")
			return
		}
		if errors.Is(err, domain.ErrPollNotFound) {
			respondError(w, http.StatusNotFound, "poll not found")
			return
		}

		h.logger.Error("failed to get poll", zap.String("poll_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "server error: could not retrieve poll data")
		return
	}

	respondJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	input := ports.ListPollsInput{
		OwnerID: r.URL.Query().Get("ownerId"),
		Page:    1,
	}
	if p := r.URL.Query().Get("page"); p != "" {
		fmt.Sscanf(p, "%d", &input.Page)
	}

	polls, err := h.service.ListPolls(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("failed to list polls", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "server error: could not list polls")
		return
	}

	respondJSON(w, http.StatusOK, polls)
}
