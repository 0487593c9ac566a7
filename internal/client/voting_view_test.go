package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotpoll/api/internal/core/domain"
)

func testView() domain.PollView {
	base := time.Date(2025, time.May, 5, 9, 0, 0, 0, time.Local)
	return domain.PollView{
		ID:     uuid.New(),
		Title:  "Retro",
		Status: domain.PollStatusOpen,
		Options: []domain.OptionView{
			{ID: uuid.New(), Time: base, Voters: []string{"Alice"}, VoteCount: 1, Percentage: 100},
			{ID: uuid.New(), Time: base.Add(time.Hour)},
		},
		TotalVoters: 1,
	}
}

func okServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
}

func failServer(status int, message string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"` + message + `"}`))
	}))
}

func TestToggleAddsAndCommits(t *testing.T) {
	srv := okServer()
	defer srv.Close()

	view := testView()
	v := NewVotingView(srv.URL, "Bob", view)
	optionID := view.Options[1].ID

	require.NoError(t, v.Toggle(context.Background(), optionID))

	assert.Equal(t, StateCommitted, v.State())
	assert.True(t, v.Selected(optionID))

	got := v.View()
	assert.Equal(t, 2, got.TotalVoters)
	assert.Equal(t, []string{"Bob"}, got.Options[1].Voters)
	assert.InDelta(t, 50.0, got.Options[1].Percentage, 0.001)
	assert.InDelta(t, 50.0, got.Options[0].Percentage, 0.001)
}

func TestToggleRemovesOwnVote(t *testing.T) {
	srv := okServer()
	defer srv.Close()

	view := testView()
	v := NewVotingView(srv.URL, "Alice", view)
	optionID := view.Options[0].ID
	require.True(t, v.Selected(optionID))

	require.NoError(t, v.Toggle(context.Background(), optionID))

	assert.False(t, v.Selected(optionID))
	got := v.View()
	assert.Empty(t, got.Options[0].Voters)
	// nobody left voting: display total floors at 1
	assert.Equal(t, 1, got.TotalVoters)
}

func TestToggleRollsBackOnServerError(t *testing.T) {
	srv := failServer(http.StatusConflict, "poll is not open for voting")
	defer srv.Close()

	view := testView()
	v := NewVotingView(srv.URL, "Alice", view)
	before := v.View()
	optionID := view.Options[0].ID

	err := v.Toggle(context.Background(), optionID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll is not open")

	// snapshot restored exactly: selection still present, counts untouched
	assert.Equal(t, StateRolledBack, v.State())
	assert.True(t, v.Selected(optionID))
	assert.Equal(t, before, v.View())
}

func TestToggleRollsBackOnTransportError(t *testing.T) {
	srv := okServer()
	srv.Close() // nothing is listening anymore

	view := testView()
	v := NewVotingView(srv.URL, "Bob", view)
	before := v.View()

	err := v.Toggle(context.Background(), view.Options[1].ID)
	require.ErrorIs(t, err, ErrTransport)

	assert.Equal(t, StateRolledBack, v.State())
	assert.False(t, v.Selected(view.Options[1].ID))
	assert.Equal(t, before, v.View())
}

func TestToggleRejectedWhileSubmitting(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	defer close(release)

	view := testView()
	v := NewVotingView(srv.URL, "Bob", view)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- v.Toggle(context.Background(), view.Options[0].ID)
	}()

	<-started
	err := v.Toggle(context.Background(), view.Options[1].ID)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	// the rejected toggle must not leave any trace
	assert.False(t, v.Selected(view.Options[1].ID))

	release <- struct{}{}
	require.NoError(t, <-firstDone)
}

func TestToggleTwiceEndsUpWhereItStarted(t *testing.T) {
	srv := okServer()
	defer srv.Close()

	view := testView()
	v := NewVotingView(srv.URL, "Bob", view)
	optionID := view.Options[1].ID

	require.NoError(t, v.Toggle(context.Background(), optionID))
	require.NoError(t, v.Toggle(context.Background(), optionID))

	assert.False(t, v.Selected(optionID))
	got := v.View()
	assert.Empty(t, got.Options[1].Voters)
	assert.Equal(t, 1, got.TotalVoters)
}
