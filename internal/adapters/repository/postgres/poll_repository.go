package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/slotpoll/api/internal/core/domain"
	"github.com/slotpoll/api/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (id, title, description, owner_id, daily_start_time, daily_end_time, slot_duration, status, final_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, queryPoll,
		poll.ID, poll.Title, poll.Description, poll.OwnerID,
		poll.Config.DailyStartTime, poll.Config.DailyEndTime, poll.Config.SlotDuration,
		poll.Status, poll.FinalTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	queryDate := `
		INSERT INTO poll_target_dates (poll_id, target_date)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	dateStmt, err := tx.PrepareContext(ctx, queryDate)
	if err != nil {
		return fmt.Errorf("failed to prepare target date statement: %w", err)
	}
	defer dateStmt.Close()

	for _, d := range poll.Config.TargetDates {
		if _, err = dateStmt.ExecContext(ctx, poll.ID, d); err != nil {
			return fmt.Errorf("failed to insert target date: %w", err)
		}
	}

	querySlot := `
		INSERT INTO poll_slots (id, poll_id, slot_time)
		VALUES ($1, $2, $3)
	`
	slotStmt, err := tx.PrepareContext(ctx, querySlot)
	if err != nil {
		return fmt.Errorf("failed to prepare slot statement: %w", err)
	}
	defer slotStmt.Close()

	for _, s := range poll.AvailableSlots {
		if _, err = slotStmt.ExecContext(ctx, s.ID, s.PollID, s.Time); err != nil {
			return fmt.Errorf("failed to insert slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	queryPoll := `
		SELECT id, title, description, owner_id, daily_start_time, daily_end_time, slot_duration, status, final_time, created_at, updated_at
		FROM polls
		WHERE id = $1
	`

	var poll domain.Poll
	err := r.db.QueryRowContext(ctx, queryPoll, id).Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.OwnerID,
		&poll.Config.DailyStartTime, &poll.Config.DailyEndTime, &poll.Config.SlotDuration,
		&poll.Status, &poll.FinalTime, &poll.CreatedAt, &poll.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	if err := r.loadChildren(ctx, &poll); err != nil {
		return nil, err
	}

	return &poll, nil
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	query := `
		SELECT id, title, description, owner_id, daily_start_time, daily_end_time, slot_duration, status, final_time, created_at, updated_at
		FROM polls
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Poll, error) {
	query := `
		SELECT id, title, description, owner_id, daily_start_time, daily_end_time, slot_duration, status, final_time, created_at, updated_at
		FROM polls
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) scanPolls(ctx context.Context, rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		err := rows.Scan(
			&poll.ID, &poll.Title, &poll.Description, &poll.OwnerID,
			&poll.Config.DailyStartTime, &poll.Config.DailyEndTime, &poll.Config.SlotDuration,
			&poll.Status, &poll.FinalTime, &poll.CreatedAt, &poll.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}

		if err := r.loadChildren(ctx, &poll); err != nil {
			return nil, err
		}

		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func (r *pollRepository) loadChildren(ctx context.Context, poll *domain.Poll) error {
	dates, err := r.fetchTargetDates(ctx, poll.ID)
	if err != nil {
		return err
	}
	poll.Config.TargetDates = dates

	slots, err := r.fetchSlots(ctx, poll.ID)
	if err != nil {
		return err
	}
	poll.AvailableSlots = slots

	votes, err := r.fetchVotes(ctx, poll.ID)
	if err != nil {
		return err
	}
	poll.Votes = votes

	return nil
}

func (r *pollRepository) fetchTargetDates(ctx context.Context, pollID uuid.UUID) ([]time.Time, error) {
	query := `
		SELECT target_date
		FROM poll_target_dates
		WHERE poll_id = $1
		ORDER BY target_date
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get target dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan target date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating target dates: %w", err)
	}
	return dates, nil
}

func (r *pollRepository) fetchSlots(ctx context.Context, pollID uuid.UUID) ([]domain.Slot, error) {
	query := `
		SELECT id, poll_id, slot_time
		FROM poll_slots
		WHERE poll_id = $1
		ORDER BY slot_time
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll slots: %w", err)
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.ID, &s.PollID, &s.Time); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}
	return slots, nil
}

func (r *pollRepository) fetchVotes(ctx context.Context, pollID uuid.UUID) ([]domain.Vote, error) {
	query := `
		SELECT v.voter_name, v.voted_at, s.slot_id
		FROM votes v
		JOIN vote_selections s ON s.poll_id = v.poll_id AND s.voter_name = v.voter_name
		WHERE v.poll_id = $1
		ORDER BY v.voted_at, s.selected_at
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	votes := []domain.Vote{}
	index := map[string]int{}
	for rows.Next() {
		var (
			name    string
			votedAt time.Time
			slotID  uuid.UUID
		)
		if err := rows.Scan(&name, &votedAt, &slotID); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}

		i, ok := index[name]
		if !ok {
			votes = append(votes, domain.Vote{
				PollID:    pollID,
				VoterName: name,
				VotedAt:   votedAt,
			})
			i = len(votes) - 1
			index[name] = i
		}
		votes[i].SelectedSlots = append(votes[i].SelectedSlots, slotID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}
