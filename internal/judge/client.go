// Package judge is a stateless request/response wrapper over the remote
// judge REST API. It performs no retries and keeps no cache; every error
// from it is the caller's to handle.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"github.com/openjudge/arena/api"
)

type Client struct {
	httpc   *http.Client
	baseURL string
}

// New creates a judge client for the given base URL, e.g.
// "http://localhost:8080/api". Responses are transparently
// gzip-decompressed.
func New(baseURL string) *Client {
	return &Client{
		httpc: &http.Client{
			Timeout:   30 * time.Second,
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) Contest(ctx context.Context, contestID int64) (*api.Contest, error) {
	var contest api.Contest
	err := c.get(ctx, fmt.Sprintf("/contests/%d", contestID), &contest)
	if err != nil {
		return nil, fmt.Errorf("fetch contest %d: %w", contestID, err)
	}
	return &contest, nil
}

func (c *Client) Leaderboard(ctx context.Context, contestID int64) ([]api.LeaderboardEntry, error) {
	var entries []api.LeaderboardEntry
	err := c.get(ctx, fmt.Sprintf("/contests/%d/leaderboard", contestID), &entries)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard %d: %w", contestID, err)
	}
	return entries, nil
}

// Submit hands the code to the judge. The returned submission is the
// freshly created server record, normally in status PENDING.
func (c *Client) Submit(ctx context.Context, req api.SubmissionRequest) (*api.Submission, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/submissions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var subm api.Submission
	if err := c.do(httpReq, &subm); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	return &subm, nil
}

// Submission fetches the current server snapshot of one submission.
func (c *Client) Submission(ctx context.Context, submissionID int64) (*api.Submission, error) {
	var subm api.Submission
	err := c.get(ctx, fmt.Sprintf("/submissions/%d", submissionID), &subm)
	if err != nil {
		return nil, fmt.Errorf("fetch submission %d: %w", submissionID, err)
	}
	return &subm, nil
}

// UserSubmissions returns all of the user's submissions in the contest,
// across every problem. The server does not filter by problem.
func (c *Client) UserSubmissions(ctx context.Context, contestID int64, username string) ([]api.Submission, error) {
	var subms []api.Submission
	err := c.get(ctx, fmt.Sprintf("/contests/%d/submissions/%s", contestID, username), &subms)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions of %s in contest %d: %w", username, contestID, err)
	}
	return subms, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
