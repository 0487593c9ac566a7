package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/slotpoll/api/internal/core/domain"
)

// VoteRepository mutates a single voter's ledger entry. AddSelection and
// RemoveSelection must be atomic per (poll, voter) so concurrent voters on
// the same poll never overwrite each other's records.
type VoteRepository interface {
	AddSelection(ctx context.Context, pollID uuid.UUID, voterName string, slotID uuid.UUID) error
	RemoveSelection(ctx context.Context, pollID uuid.UUID, voterName string, slotID uuid.UUID) error
}

type ApplyVoteInput struct {
	PollID    uuid.UUID
	SlotID    uuid.UUID
	VoterName string
	Action    domain.VoteAction
}

type VoteService interface {
	ApplyVote(ctx context.Context, input ApplyVoteInput) (*domain.Poll, error)
}
