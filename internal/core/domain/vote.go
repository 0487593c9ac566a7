package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one participant's selections on a poll. A vote record is keyed by
// (poll, voter name): two participants entering the same display name share
// one record. That collision is accepted behavior inherited from the product,
// not an oversight.
type Vote struct {
	PollID        uuid.UUID   `json:"pollId"`
	VoterName     string      `json:"voterName"`
	SelectedSlots []uuid.UUID `json:"selectedSlots"`
	VotedAt       time.Time   `json:"votedAt"`
}

type VoteAction string

const (
	VoteActionAdd    VoteAction = "add"
	VoteActionRemove VoteAction = "remove"
)

func (a VoteAction) Valid() bool {
	return a == VoteActionAdd || a == VoteActionRemove
}
