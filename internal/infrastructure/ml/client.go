package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ReviewLens/internal/config"
	"ReviewLens/internal/domain"
	"ReviewLens/internal/ports"
)

// Client talks to the external sentiment inference service. The model
// behind it is binary: each call returns POSITIVE and NEGATIVE
// confidences summing to roughly 1. The client imposes a per-call
// timeout and a bounded retry budget; exhausting either surfaces as a
// model failure, which callers degrade to the neutral sentinel.
type Client struct {
	endpoint   string
	apiKey     string
	maxElapsed time.Duration
	http       *http.Client
}

var _ ports.SentimentModel = (*Client)(nil)

// NewClient creates a reusable HTTP client from configuration.
func NewClient(cfg config.ModelConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxElapsed := cfg.MaxElapsed
	if maxElapsed <= 0 {
		maxElapsed = 2 * timeout
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		maxElapsed: maxElapsed,
		http:       &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Text string `json:"text"`
}

type labeledScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Score sends cleaned text for inference. Transient failures (5xx,
// network errors) retry with exponential backoff inside the elapsed
// budget; anything left over is the caller's problem to absorb.
func (c *Client) Score(ctx context.Context, text string) (domain.SentimentScores, error) {
	body, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return domain.SentimentScores{}, fmt.Errorf("marshal payload: %w", err)
	}

	var scores []labeledScore
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/sentiment", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("new request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("model server error: %s", resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
		}

		scores = scores[:0]
		if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return domain.SentimentScores{}, fmt.Errorf("score text: %w", err)
	}

	return pairFromLabels(scores)
}

// pairFromLabels picks the POSITIVE and NEGATIVE confidences out of
// the labeled response; a missing label reads as zero.
func pairFromLabels(scores []labeledScore) (domain.SentimentScores, error) {
	if len(scores) == 0 {
		return domain.SentimentScores{}, fmt.Errorf("model returned no scores")
	}

	var pair domain.SentimentScores
	for _, s := range scores {
		switch strings.ToUpper(s.Label) {
		case "POSITIVE":
			pair.Positive = s.Score
		case "NEGATIVE":
			pair.Negative = s.Score
		}
	}
	return pair, nil
}
