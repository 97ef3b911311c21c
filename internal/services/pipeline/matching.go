package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Candidate is one ranked match proposal from the matching API. Score is
// the upstream 0-100 confidence; this system only stores and displays it.
type Candidate struct {
	Match string  `json:"match"`
	Score float64 `json:"score"`
}

// MatchingClient calls the external batch matching API
type MatchingClient struct {
	baseURL string
	limit   int
	client  *http.Client
}

// NewMatchingClient creates a client for the matching API
func NewMatchingClient(baseURL string, limit int) *MatchingClient {
	if limit <= 0 {
		limit = 5
	}
	return &MatchingClient{
		baseURL: baseURL,
		limit:   limit,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// MatchBatch sends all extracted descriptions in one call and returns the
// ranked candidates keyed by query string.
func (c *MatchingClient) MatchBatch(ctx context.Context, queries []string) (map[string][]Candidate, error) {
	payload, err := json.Marshal(map[string][]string{"queries": queries})
	if err != nil {
		return nil, fmt.Errorf("marshal queries: %w", err)
	}

	url := c.baseURL + "/match/batch?limit=" + strconv.Itoa(c.limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("matching failed: status %d, body: %s", resp.StatusCode, string(msg))
	}

	var res struct {
		Results map[string][]Candidate `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode matching response: %w", err)
	}
	return res.Results, nil
}
