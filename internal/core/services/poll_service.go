package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotpoll/api/internal/core/domain"
	"github.com/slotpoll/api/internal/core/ports"
)

const pollsPerPage = 20

type pollService struct {
	repo   ports.PollRepository
	logger *zap.Logger
}

func NewPollService(repo ports.PollRepository, logger *zap.Logger) ports.PollService {
	return &pollService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates the request, expands the availability config into the
// poll's votable slots and persists the whole aggregate. This is the only
// point at which slots are computed; they are immutable afterwards.
func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title", domain.ErrMissingField)
	}
	if input.OwnerID == "" {
		return nil, fmt.Errorf("%w: ownerId", domain.ErrMissingField)
	}
	if len(input.Config.TargetDates) == 0 && input.Config.DailyStartTime == "" {
		return nil, fmt.Errorf("%w: config", domain.ErrMissingField)
	}

	instants, err := domain.ExpandSlots(input.Config)
	if err != nil {
		return nil, err
	}

	pollID := uuid.New()
	now := time.Now()

	poll := &domain.Poll{
		ID:          pollID,
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		Config:      input.Config,
		Votes:       []domain.Vote{},
		Status:      domain.PollStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, instant := range instants {
		poll.AvailableSlots = append(poll.AvailableSlots, domain.Slot{
			ID:     uuid.New(),
			PollID: pollID,
			Time:   instant,
		})
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	s.logger.Info("poll created",
		zap.String("poll_id", pollID.String()),
		zap.Int("slots", len(poll.AvailableSlots)))

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	return s.repo.GetByID(ctx, pollID)
}

func (s *pollService) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	if input.OwnerID == "" {
		return nil, fmt.Errorf("%w: ownerId", domain.ErrMissingField)
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	return s.repo.ListByOwner(ctx, input.OwnerID, pollsPerPage, (page-1)*pollsPerPage)
}
