package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slotpoll/api/internal/core/domain"
	"github.com/slotpoll/api/internal/core/ports"
)

type stubPollService struct {
	createFn func(ports.CreatePollInput) (*domain.Poll, error)
	getFn    func(string) (*domain.Poll, error)
}

func (s *stubPollService) Create(_ context.Context, in ports.CreatePollInput) (*domain.Poll, error) {
	return s.createFn(in)
}

func (s *stubPollService) GetPoll(_ context.Context, id string) (*domain.Poll, error) {
	return s.getFn(id)
}

func (s *stubPollService) ListPolls(_ context.Context, _ ports.ListPollsInput) ([]*domain.Poll, error) {
	return nil, nil
}

type stubVoteService struct {
	applyFn func(ports.ApplyVoteInput) (*domain.Poll, error)
}

func (s *stubVoteService) ApplyVote(_ context.Context, in ports.ApplyVoteInput) (*domain.Poll, error) {
	return s.applyFn(in)
}

func newTestServer(pollSvc ports.PollService, voteSvc ports.VoteService) *httptest.Server {
	logger := zap.NewNop()
	return httptest.NewServer(NewHandler(
		NewPollHandler(pollSvc, logger),
		NewVoteHandler(voteSvc, logger),
		NewPageHandler(logger),
	))
}

func samplePoll() *domain.Poll {
	pollID := uuid.New()
	return &domain.Poll{
		ID:      pollID,
		Title:   "Kickoff",
		OwnerID: "owner-1",
		Status:  domain.PollStatusOpen,
		AvailableSlots: []domain.Slot{
			{ID: uuid.New(), PollID: pollID, Time: time.Date(2025, time.June, 2, 10, 0, 0, 0, time.Local)},
		},
		Votes: []domain.Vote{},
	}
}

func TestCreatePollReturnsShareURL(t *testing.T) {
	poll := samplePoll()
	srv := newTestServer(&stubPollService{
		createFn: func(in ports.CreatePollInput) (*domain.Poll, error) {
			assert.Equal(t, "Kickoff", in.Title)
			return poll, nil
		},
	}, nil)
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"title":   "Kickoff",
		"ownerId": "owner-1",
		"config": map[string]any{
			"targetDates":    []string{"2025-06-02T00:00:00Z"},
			"dailyStartTime": "10:00",
			"dailyEndTime":   "11:00",
			"slotDuration":   60,
		},
	})
	res, err := http.Post(srv.URL+"/api/polls", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var created struct {
		Message  string `json:"message"`
		PollID   string `json:"pollId"`
		ShareURL string `json:"shareUrl"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, poll.ID.String(), created.PollID)
	assert.Equal(t, "/poll/"+poll.ID.String(), created.ShareURL)
}

func TestCreatePollStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing field", domain.ErrMissingField, http.StatusBadRequest},
		{"invalid config", domain.ErrInvalidConfig, http.StatusBadRequest},
		{"persistence failure", fmt.Errorf("failed to insert poll: broken"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&stubPollService{
				createFn: func(ports.CreatePollInput) (*domain.Poll, error) { return nil, tc.err },
			}, nil)
			defer srv.Close()

			res, err := http.Post(srv.URL+"/api/polls", "application/json", bytes.NewReader([]byte(`{}`)))
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.NotEmpty(t, body.Message)
			if tc.status == http.StatusInternalServerError {
				// internal detail must not leak
				assert.NotContains(t, body.Message, "broken")
				assert.NotContains(t, body.Detail, "broken")
			}
		})
	}
}

func TestGetPollStatusMapping(t *testing.T) {
	poll := samplePoll()
	srv := newTestServer(&stubPollService{
		getFn: func(id string) (*domain.Poll, error) {
			switch id {
			case poll.ID.String():
				return poll, nil
			case "bad-id":
				return nil, domain.ErrInvalidPollID
			default:
				return nil, domain.ErrPollNotFound
			}
		},
	}, nil)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/poll/" + poll.ID.String())
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(srv.URL + "/api/poll/bad-id")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Get(srv.URL + "/api/poll/" + uuid.NewString())
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func putVote(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func TestVoteOnPollStatusMapping(t *testing.T) {
	poll := samplePoll()
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"success", nil, http.StatusOK},
		{"invalid slot", domain.ErrInvalidSlot, http.StatusBadRequest},
		{"missing voter", domain.ErrMissingField, http.StatusBadRequest},
		{"unknown poll", domain.ErrPollNotFound, http.StatusNotFound},
		{"poll closed", domain.ErrPollNotOpen, http.StatusConflict},
		{"persistence failure", fmt.Errorf("failed to commit transaction: broken"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(nil, &stubVoteService{
				applyFn: func(in ports.ApplyVoteInput) (*domain.Poll, error) {
					if tc.err != nil {
						return nil, tc.err
					}
					assert.Equal(t, domain.VoteActionAdd, in.Action)
					assert.Equal(t, "Alice", in.VoterName)
					return poll, nil
				},
			})
			defer srv.Close()

			res := putVote(t, fmt.Sprintf("%s/api/poll/%s/vote", srv.URL, poll.ID), map[string]any{
				"optionId":  poll.AvailableSlots[0].ID,
				"action":    "add",
				"voterName": "Alice",
			})
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)
		})
	}
}

func TestVoteOnPollRejectsMalformedID(t *testing.T) {
	srv := newTestServer(nil, &stubVoteService{
		applyFn: func(ports.ApplyVoteInput) (*domain.Poll, error) {
			t.Fatal("service must not be called for a malformed id")
			return nil, nil
		},
	})
	defer srv.Close()

	res := putVote(t, srv.URL+"/api/poll/not-a-uuid/vote", map[string]any{})
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
