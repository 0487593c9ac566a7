package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/slotpoll/api/internal/core/domain"
	"github.com/slotpoll/api/internal/core/ports"
)

type voteService struct {
	pollRepo ports.PollRepository
	voteRepo ports.VoteRepository
	logger   *zap.Logger
}

func NewVoteService(pollRepo ports.PollRepository, voteRepo ports.VoteRepository, logger *zap.Logger) ports.VoteService {
	return &voteService{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
		logger:   logger,
	}
}

// ApplyVote toggles one slot in a voter's selection set. Both actions are
// idempotent: adding an already-selected slot and removing an absent one are
// no-ops, not errors. The updated poll is returned so the caller can render
// server truth without a second fetch.
func (s *voteService) ApplyVote(ctx context.Context, input ports.ApplyVoteInput) (*domain.Poll, error) {
	if input.VoterName == "" {
		return nil, fmt.Errorf("%w: voterName", domain.ErrMissingField)
	}
	if !input.Action.Valid() {
		return nil, fmt.Errorf("%w: action must be add or remove", domain.ErrMissingField)
	}

	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}
	if !poll.IsOpen() {
		return nil, domain.ErrPollNotOpen
	}
	if !poll.HasSlot(input.SlotID) {
		return nil, domain.ErrInvalidSlot
	}

	switch input.Action {
	case domain.VoteActionAdd:
		err = s.voteRepo.AddSelection(ctx, input.PollID, input.VoterName, input.SlotID)
	case domain.VoteActionRemove:
		err = s.voteRepo.RemoveSelection(ctx, input.PollID, input.VoterName, input.SlotID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("vote applied",
		zap.String("poll_id", input.PollID.String()),
		zap.String("action", string(input.Action)))

	return s.pollRepo.GetByID(ctx, input.PollID)
}
