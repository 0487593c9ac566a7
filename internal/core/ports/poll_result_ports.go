package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/slotpoll/api/internal/core/domain"
)

type PollResultRepository interface {
	GetPollOptionStats(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]domain.PollOptionStats, error)
	SummarizeVotes(ctx context.Context, pollID uuid.UUID) error
}

type SummaryService interface {
	SummarizeAllVotes(ctx context.Context) error
}
