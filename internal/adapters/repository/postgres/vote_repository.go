package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/slotpoll/api/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// AddSelection records one slot in the voter's selection set, creating the
// vote record on first use. Every statement is keyed by (poll_id, voter_name)
// so concurrent voters on the same poll never touch each other's rows, and
// re-adding an existing selection is a no-op.
func (r *voteRepository) AddSelection(ctx context.Context, pollID uuid.UUID, voterName string, slotID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryVote := `
		INSERT INTO votes (poll_id, voter_name)
		VALUES ($1, $2)
		ON CONFLICT (poll_id, voter_name) DO NOTHING
	`
	if _, err = tx.ExecContext(ctx, queryVote, pollID, voterName); err != nil {
		return fmt.Errorf("failed to upsert vote record: %w", err)
	}

	querySelection := `
		INSERT INTO vote_selections (poll_id, voter_name, slot_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (poll_id, voter_name, slot_id) DO NOTHING
	`
	if _, err = tx.ExecContext(ctx, querySelection, pollID, voterName, slotID); err != nil {
		return fmt.Errorf("failed to insert selection: %w", err)
	}

	if err = r.touchPoll(ctx, tx, pollID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RemoveSelection drops one slot from the voter's selection set. Removing an
// absent selection is a no-op. A record whose last selection is removed is
// pruned so count derivation never sees empty records.
func (r *voteRepository) RemoveSelection(ctx context.Context, pollID uuid.UUID, voterName string, slotID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryDelete := `
		DELETE FROM vote_selections
		WHERE poll_id = $1 AND voter_name = $2 AND slot_id = $3
	`
	if _, err = tx.ExecContext(ctx, queryDelete, pollID, voterName, slotID); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}

	queryPrune := `
		DELETE FROM votes v
		WHERE v.poll_id = $1 AND v.voter_name = $2
		AND NOT EXISTS (
			SELECT 1 FROM vote_selections s
			WHERE s.poll_id = v.poll_id AND s.voter_name = v.voter_name
		)
	`
	if _, err = tx.ExecContext(ctx, queryPrune, pollID, voterName); err != nil {
		return fmt.Errorf("failed to prune empty vote record: %w", err)
	}

	if err = r.touchPoll(ctx, tx, pollID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *voteRepository) touchPoll(ctx context.Context, tx *sql.Tx, pollID uuid.UUID) error {
	query := `UPDATE polls SET updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, pollID); err != nil {
		return fmt.Errorf("failed to touch poll: %w", err)
	}
	return nil
}
