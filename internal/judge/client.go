package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNoToken     = errors.New("judge returned no submission token")
	ErrPollTimeout = errors.New("judge polling attempts exhausted")
)

// Judge0 status ids. Everything >= StatusAccepted is terminal; only
// StatusAccepted itself means the run succeeded.
const (
	StatusAccepted = 3
)

// SubmissionResult is the judge's terminal verdict for one run.
type SubmissionResult struct {
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Time          string `json:"time"`
	Memory        int    `json:"memory"`
}

type submitRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin,omitempty"`
}

type submitResponse struct {
	Token string `json:"token"`
}

// Client talks to a Judge0-style execution service. Submit once, poll on a
// fixed interval up to a bounded attempt count; a run is never retried.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxAttempts  int
}

func NewClient(baseURL string, pollInterval time.Duration, maxAttempts int) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

// Submit queues one run and returns its token.
func (c *Client) Submit(ctx context.Context, sourceCode string, languageID int, stdin string) (string, error) {
	body, err := json.Marshal(submitRequest{
		SourceCode: sourceCode,
		LanguageID: languageID,
		Stdin:      stdin,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode submission: %w", err)
	}

	url := c.baseURL + "/submissions?base64_encoded=false&wait=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("judge submit failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("judge submit returned status %d", resp.StatusCode)
	}

	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	if sr.Token == "" {
		return "", ErrNoToken
	}
	return sr.Token, nil
}

// Poll fetches the current state of a submission.
func (c *Client) Poll(ctx context.Context, token string) (*SubmissionResult, error) {
	url := c.baseURL + "/submissions/" + token + "?base64_encoded=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge poll failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("judge poll returned status %d", resp.StatusCode)
	}

	var result SubmissionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode poll response: %w", err)
	}
	return &result, nil
}

// Run submits and polls until the judge reports a terminal status or the
// attempt budget runs out.
func (c *Client) Run(ctx context.Context, sourceCode string, languageID int, stdin string) (*SubmissionResult, error) {
	token, err := c.Submit(ctx, sourceCode, languageID, stdin)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		result, err := c.Poll(ctx, token)
		if err != nil {
			return nil, err
		}
		if result.Status.ID >= StatusAccepted {
			return result, nil
		}
	}
	return nil, ErrPollTimeout
}
