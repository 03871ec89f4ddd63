package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Wire types for leaderboard.v1. Every message carries the schema tag.

type submitRequest struct {
	Schema   string `json:"schema"`
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
	Score    int    `json:"score"`
}

type bestResponse struct {
	Schema   string `json:"schema"`
	Identity string `json:"identity"`
	Best     *int   `json:"best"`
}

type wireEntry struct {
	Identity string     `json:"identity"`
	Score    *int       `json:"score"`
	At       *time.Time `json:"at,omitempty"`
}

type topResponse struct {
	Schema  string      `json:"schema"`
	Entries []wireEntry `json:"entries"`
}

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client talks to a remote leaderboard over HTTP using the leaderboard.v1
// schema:
//
//	POST {base}/v1/scores             {schema, identity, secret, score}
//	GET  {base}/v1/scores/{identity}  -> {schema, identity, best}
//	GET  {base}/v1/leaderboard?n=N    -> {schema, entries: [{identity, score, at}]}
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("leaderboard: invalid url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("leaderboard: url %q must be http or https", baseURL)
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// SubmitScore posts a score.
func (c *Client) SubmitScore(ctx context.Context, identity, secret string, score int) error {
	body, err := json.Marshal(submitRequest{
		Schema:   Schema,
		Identity: identity,
		Secret:   secret,
		Score:    score,
	})
	if err != nil {
		return fmt.Errorf("leaderboard: encode submit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("v1", "scores"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("leaderboard: build submit: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("leaderboard: submit: %w", err)
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return statusError("submit", resp)
	}
	return nil
}

// BestScore fetches identity's best score. An identity the service has
// never seen has a best of 0.
func (c *Client) BestScore(ctx context.Context, identity string) (int, error) {
	var out bestResponse
	found, err := c.get(ctx, "best score", c.endpoint("v1", "scores", identity), &out)
	if err != nil || !found {
		return 0, err
	}
	if out.Identity != identity || out.Best == nil || *out.Best < 0 {
		return 0, fmt.Errorf("%w: bad best score for %q", ErrSchema, identity)
	}
	return *out.Best, nil
}

// TopScores fetches the n best entries.
func (c *Client) TopScores(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	endpoint := c.endpoint("v1", "leaderboard") + "?n=" + strconv.Itoa(n)

	var out topResponse
	found, err := c.get(ctx, "top scores", endpoint, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, statusErrorCode("top scores", http.StatusNotFound)
	}
	if out.Entries == nil {
		return nil, fmt.Errorf("%w: missing entries", ErrSchema)
	}
	if len(out.Entries) > n {
		return nil, fmt.Errorf("%w: %d entries for n=%d", ErrSchema, len(out.Entries), n)
	}

	entries := make([]Entry, 0, len(out.Entries))
	for i, we := range out.Entries {
		if we.Identity == "" || we.Score == nil || *we.Score < 0 {
			return nil, fmt.Errorf("%w: entry %d is incomplete", ErrSchema, i)
		}
		if i > 0 && *we.Score > entries[i-1].Score {
			return nil, fmt.Errorf("%w: entries are not ordered", ErrSchema)
		}
		e := Entry{Identity: we.Identity, Score: *we.Score}
		if we.At != nil {
			e.At = *we.At
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// get decodes a schema-tagged JSON document into out. It reports
// found=false on 404.
func (c *Client) get(ctx context.Context, what, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("leaderboard: build %s: %w", what, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("leaderboard: %s: %w", what, err)
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, statusError(what, resp)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrSchema, what, err)
	}
	if tag := schemaOf(out); tag != Schema {
		return false, fmt.Errorf("%w: %s has schema %q", ErrSchema, what, tag)
	}
	return true, nil
}

func schemaOf(v any) string {
	switch m := v.(type) {
	case *bestResponse:
		return m.Schema
	case *topResponse:
		return m.Schema
	}
	return ""
}

func (c *Client) endpoint(parts ...string) string {
	return c.base.JoinPath(parts...).String()
}

func statusError(what string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	if len(bytes.TrimSpace(msg)) == 0 {
		return statusErrorCode(what, resp.StatusCode)
	}
	return fmt.Errorf("leaderboard: %s failed: %d %s", what, resp.StatusCode, bytes.TrimSpace(msg))
}

func statusErrorCode(what string, code int) error {
	return fmt.Errorf("leaderboard: %s failed: %d %s", what, code, http.StatusText(code))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	_ = resp.Body.Close()
}

var _ Service = (*Client)(nil)
