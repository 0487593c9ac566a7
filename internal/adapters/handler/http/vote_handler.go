package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotpoll/api/internal/core/domain"
	"github.com/slotpoll/api/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	logger  *zap.Logger
}

func NewVoteHandler(service ports.VoteService, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		service: service,
		logger:  logger,
	}
}

type voteRequest struct {
	OptionID  uuid.UUID `json:"optionId"`
	Action    string    `json:"action"`
	VoterName string    `json:"voterName"`
}

func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	pollIDStr := chi.URLParam(r, "id")
	pollID, err := uuid.Parse(pollIDStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid poll id format")
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := ports.ApplyVoteInput{
		PollID:    pollID,
		SlotID:    req.OptionID,
		VoterName: req.VoterName,
		Action:    domain.VoteAction(req.Action),
	}

	poll, err := h.service.ApplyVote(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) || errors.Is(err, domain.ErrInvalidSlot) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrPollNotFound) {
			respondError(w, http.StatusNotFound, "poll not found")
			return
		}
		if errors.Is(err, domain.ErrPollNotOpen) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}

		h.logger.Error("failed to apply vote",
			zap.String("poll_id", pollIDStr),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "server error: could not apply vote")
		return
	}

	respondJSON(w, http.StatusOK, poll)
}
