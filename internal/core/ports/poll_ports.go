package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/slotpoll/api/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	GetAll(ctx context.Context) ([]*domain.Poll, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Poll, error)
}

type CreatePollInput struct {
	Title       string
	Description string
	OwnerID     string
	Config      domain.PollConfig
}

type ListPollsInput struct {
	OwnerID string
	Page    int
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
}
