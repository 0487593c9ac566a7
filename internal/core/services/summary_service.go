package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotpoll/api/internal/core/ports"
)

type summaryService struct {
	pollRepo       ports.PollRepository
	pollResultRepo ports.PollResultRepository
	logger         *zap.Logger
}

func NewSummaryService(pollRepo ports.PollRepository, pollResultRepo ports.PollResultRepository, logger *zap.Logger) ports.SummaryService {
	return &summaryService{
		pollRepo:       pollRepo,
		pollResultRepo: pollResultRepo,
		logger:         logger,
	}
}

// SummarizeAllVotes recomputes the per-slot distinct-voter counts of every
// poll into the results table. Polls are summarized concurrently; the first
// failure is reported after all workers finish.
func (s *summaryService) SummarizeAllVotes(ctx context.Context) error {
	polls, err := s.pollRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all polls: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(polls))

	for _, poll := range polls {
		wg.Add(1)
		go func(pID uuid.UUID) {
			defer wg.Done()
			if err := s.pollResultRepo.SummarizeVotes(ctx, pID); err != nil {
				errChan <- fmt.Errorf("failed to summarize poll %s: %w", pID, err)
			}
		}(poll.ID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	s.logger.Info("vote summarization finished", zap.Int("polls", len(polls)))

	return nil
}
