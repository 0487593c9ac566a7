package domain

import (
	"time"

	"github.com/google/uuid"
)

type PollStatus string

const (
	PollStatusOpen      PollStatus = "open"
	PollStatusClosed    PollStatus = "closed"
	PollStatusFinalized PollStatus = "finalized"
)

// PollConfig is the compact availability definition a poll is created
// from: the calendar dates to offer, the daily window applied to each of
// them and the slot granularity in minutes.
type PollConfig struct {
	TargetDates    []time.Time `json:"targetDates"`
	DailyStartTime string      `json:"dailyStartTime"`
	DailyEndTime   string      `json:"dailyEndTime"`
	SlotDuration   int         `json:"slotDuration"`
}

// Slot is a single votable time instant expanded from the config. Slots are
// assigned ids at creation time and never change afterwards.
type Slot struct {
	ID     uuid.UUID `json:"id"`
	PollID uuid.UUID `json:"pollId"`
	Time   time.Time `json:"time"`
}

type Poll struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	OwnerID        string     `json:"ownerId"`
	Config         PollConfig `json:"config"`
	AvailableSlots []Slot     `json:"availableDates"`
	Votes          []Vote     `json:"votes"`
	Status         PollStatus `json:"status"`
	FinalTime      *time.Time `json:"finalTime,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (p *Poll) IsOpen() bool {
	return p.Status == PollStatusOpen
}

// HasSlot reports whether id identifies one of the poll's votable slots.
func (p *Poll) HasSlot(id uuid.UUID) bool {
	for _, s := range p.AvailableSlots {
		if s.ID == id {
			return true
		}
	}
	return false
}

type PollOptionStats struct {
	VoteCount  int64
	Percentage float64
}
