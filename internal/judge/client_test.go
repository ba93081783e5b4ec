package judge_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openjudge/arena/api"
	"github.com/openjudge/arena/internal/judge"
)

func TestContestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/contests/1", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		json.NewEncoder(w).Encode(api.Contest{
			ID:       1,
			Name:     "Weekly Round",
			IsActive: true,
			Problems: []api.Problem{{ID: 11, Title: "Two Sum", Difficulty: 2}},
		})
	}))
	defer srv.Close()

	c := judge.New(srv.URL + "/api")
	contest, err := c.Contest(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Weekly Round", contest.Name)
	require.Len(t, contest.Problems, 1)
	require.Equal(t, int64(11), contest.Problems[0].ID)
}

func TestContestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := judge.New(srv.URL + "/api")
	_, err := c.Contest(context.Background(), 999)
	require.ErrorIs(t, err, judge.ErrNotFound)
}

func TestServerErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "judge on fire", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := judge.New(srv.URL + "/api")
	_, err := c.Leaderboard(context.Background(), 1)
	var statusErr *judge.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Code)
	require.Equal(t, "judge on fire", statusErr.Body)
}

func TestNetworkErrorIsNotStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := judge.New(srv.URL + "/api")
	_, err := c.Submission(context.Background(), 5)
	require.Error(t, err)
	var statusErr *judge.StatusError
	require.False(t, errors.As(err, &statusErr))
	require.NotErrorIs(t, err, judge.ErrNotFound)
}

func TestSubmitPostsRequestAndDecodesSubmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/submissions", r.URL.Path)

		var req api.SubmissionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.Username)
		require.Equal(t, "python", req.Language)

		json.NewEncoder(w).Encode(api.Submission{
			ID: 42, Status: api.Pending,
			ProblemID: req.ProblemID, ContestID: req.ContestID, Username: req.Username,
		})
	}))
	defer srv.Close()

	c := judge.New(srv.URL + "/api")
	subm, err := c.Submit(context.Background(), api.SubmissionRequest{
		Code: `print("Hello World")`, Language: "python",
		ProblemID: 11, ContestID: 1, Username: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), subm.ID)
	require.Equal(t, api.Pending, subm.Status)
}

func TestUserSubmissionsPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/contests/3/submissions/alice", r.URL.Path)
		json.NewEncoder(w).Encode([]api.Submission{
			{ID: 1, ProblemID: 11, Status: api.Accepted},
			{ID: 2, ProblemID: 12, Status: api.WrongAnswer},
		})
	}))
	defer srv.Close()

	c := judge.New(srv.URL + "/api")
	subms, err := c.UserSubmissions(context.Background(), 3, "alice")
	require.NoError(t, err)
	require.Len(t, subms, 2)
}
