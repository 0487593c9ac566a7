// Package client implements the voting side of the poll UI contract: local
// mutations are applied before the server confirms them and rolled back to an
// exact snapshot when the call fails.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slotpoll/api/internal/core/domain"
)

type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateSubmitting SubmissionState = "submitting"
	StateCommitted  SubmissionState = "committed"
	StateRolledBack SubmissionState = "rolled_back"
)

var (
	// ErrSubmissionInFlight rejects a toggle while another one is still being
	// submitted, so overlapping optimistic mutations cannot race each other's
	// rollback snapshots.
	ErrSubmissionInFlight = errors.New("a vote submission is already in flight")
	// ErrTransport wraps client-side network failures.
	ErrTransport = errors.New("could not reach the server")
)

// VotingView mirrors the vote ledger for one participant. A toggle is applied
// locally and rendered immediately; the server call runs afterwards and any
// failure restores the captured snapshot exactly, never a partial merge.
type VotingView struct {
	baseURL    string
	pollID     uuid.UUID
	voterName  string
	httpClient *http.Client

	mu         sync.Mutex
	view       domain.PollView
	selections map[uuid.UUID]bool
	state      SubmissionState
}

func NewVotingView(baseURL string, voterName string, view domain.PollView) *VotingView {
	v := &VotingView{
		baseURL:    baseURL,
		pollID:     view.ID,
		voterName:  voterName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		view:       copyView(view),
		selections: make(map[uuid.UUID]bool),
		state:      StateIdle,
	}

	for _, opt := range view.Options {
		for _, voter := range opt.Voters {
			if voter == voterName {
				v.selections[opt.ID] = true
			}
		}
	}

	return v
}

// Toggle flips the current user's membership on one option. The local state
// is mutated and re-derived before the network call starts; the caller can
// render the returned view right away. A second toggle while one is in
// flight is rejected with ErrSubmissionInFlight and changes nothing.
func (v *VotingView) Toggle(ctx context.Context, optionID uuid.UUID) error {
	v.mu.Lock()
	if v.state == StateSubmitting {
		v.mu.Unlock()
		return ErrSubmissionInFlight
	}

	snapshot := v.capture()
	currentlyVoted := v.selections[optionID]

	action := domain.VoteActionAdd
	if currentlyVoted {
		action = domain.VoteActionRemove
		delete(v.selections, optionID)
	} else {
		v.selections[optionID] = true
	}
	v.applyMembership(optionID, action)
	v.rederive()
	v.state = StateSubmitting
	v.mu.Unlock()

	err := v.submit(ctx, optionID, action)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.restore(snapshot)
		v.state = StateRolledBack
		return err
	}
	v.state = StateCommitted
	return nil
}

// View returns a copy of the current derived state.
func (v *VotingView) View() domain.PollView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return copyView(v.view)
}

// Selected reports whether the current user has picked the option.
func (v *VotingView) Selected(optionID uuid.UUID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selections[optionID]
}

func (v *VotingView) State() SubmissionState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

type voteRequest struct {
	OptionID  uuid.UUID `json:"optionId"`
	Action    string    `json:"action"`
	VoterName string    `json:"voterName"`
}

func (v *VotingView) submit(ctx context.Context, optionID uuid.UUID, action domain.VoteAction) error {
	body, err := json.Marshal(voteRequest{
		OptionID:  optionID,
		Action:    string(action),
		VoterName: v.voterName,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/poll/%s/vote", v.baseURL, v.pollID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var er struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(res.Body).Decode(&er); err != nil || er.Message == "" {
			return fmt.Errorf("voting failed with status %d", res.StatusCode)
		}
		return fmt.Errorf("voting failed: %s", er.Message)
	}

	return nil
}

// applyMembership adds or removes the current user in one option's voter
// list. Counts are NOT adjusted here; rederive recomputes them from scratch.
func (v *VotingView) applyMembership(optionID uuid.UUID, action domain.VoteAction) {
	for i := range v.view.Options {
		opt := &v.view.Options[i]
		if opt.ID != optionID {
			continue
		}
		if action == domain.VoteActionAdd {
			opt.Voters = append(opt.Voters, v.voterName)
			return
		}
		kept := opt.Voters[:0]
		for _, voter := range opt.Voters {
			if voter != v.voterName {
				kept = append(kept, voter)
			}
		}
		opt.Voters = kept
		return
	}
}

// rederive recomputes totalVoters and per-option counts by unique-voter
// recomputation rather than increment/decrement, so repeated toggles cannot
// drift from the voter lists.
func (v *VotingView) rederive() {
	unique := make(map[string]struct{})
	for _, opt := range v.view.Options {
		for _, voter := range opt.Voters {
			unique[voter] = struct{}{}
		}
	}

	total := len(unique)
	if total < 1 {
		total = 1
	}
	v.view.TotalVoters = total

	for i := range v.view.Options {
		opt := &v.view.Options[i]
		opt.VoteCount = len(opt.Voters)
		opt.Percentage = float64(opt.VoteCount) / float64(total) * 100
	}
}

type viewSnapshot struct {
	view       domain.PollView
	selections map[uuid.UUID]bool
}

func (v *VotingView) capture() viewSnapshot {
	selections := make(map[uuid.UUID]bool, len(v.selections))
	for id, on := range v.selections {
		selections[id] = on
	}
	return viewSnapshot{view: copyView(v.view), selections: selections}
}

// restore replaces the whole state with the snapshot. Full replace, never a
// merge: whatever the optimistic mutation did is discarded wholesale.
func (v *VotingView) restore(s viewSnapshot) {
	v.view = s.view
	v.selections = s.selections
}

func copyView(view domain.PollView) domain.PollView {
	out := view
	out.Options = make([]domain.OptionView, len(view.Options))
	for i, opt := range view.Options {
		copied := opt
		copied.Voters = append([]string(nil), opt.Voters...)
		out.Options[i] = copied
	}
	return out
}
