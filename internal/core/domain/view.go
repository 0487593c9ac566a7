package domain

import (
	"time"

	"github.com/google/uuid"
)

// OptionView is one votable slot together with the names of everyone who
// picked it.
type OptionView struct {
	ID         uuid.UUID `json:"id"`
	Time       time.Time `json:"time"`
	Voters     []string  `json:"voters"`
	VoteCount  int       `json:"voteCount"`
	Percentage float64   `json:"percentage"`
}

// PollView is the derived presentation of a poll: per-option voter lists and
// the distinct-participant total. TotalVoters is floored at 1 so percentage
// rendering never divides by zero; the floor is presentation-only and is
// never persisted.
type PollView struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      PollStatus   `json:"status"`
	Options     []OptionView `json:"options"`
	TotalVoters int          `json:"totalVoters"`
}

// BuildPollView derives the view from scratch by unique-voter recomputation.
// It never increments or decrements prior counts, so repeated derivation from
// the same poll cannot drift.
func BuildPollView(p *Poll) PollView {
	votersBySlot := make(map[uuid.UUID][]string, len(p.AvailableSlots))
	unique := make(map[string]struct{})
	for _, v := range p.Votes {
		if len(v.SelectedSlots) == 0 {
			continue
		}
		unique[v.VoterName] = struct{}{}
		for _, slotID := range v.SelectedSlots {
			votersBySlot[slotID] = append(votersBySlot[slotID], v.VoterName)
		}
	}

	total := len(unique)
	if total < 1 {
		total = 1
	}

	options := make([]OptionView, 0, len(p.AvailableSlots))
	for _, s := range p.AvailableSlots {
		voters := votersBySlot[s.ID]
		options = append(options, OptionView{
			ID:         s.ID,
			Time:       s.Time,
			Voters:     voters,
			VoteCount:  len(voters),
			Percentage: float64(len(voters)) / float64(total) * 100,
		})
	}

	return PollView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Options:     options,
		TotalVoters: total,
	}
}
