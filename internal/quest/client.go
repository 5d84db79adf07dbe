// Package quest talks to the MiniQuest generation backend and turns its
// responses into exactly one outcome per request.
package quest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client handles communication with the generation API.
type Client struct {
	baseURL string
	// httpClient enforces the request timeout; streamingClient has none
	// because a streamed generation stays open for the whole workflow.
	httpClient      *http.Client
	streamingClient *http.Client
	timeout         time.Duration
}

// NewClient creates a new generation client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		streamingClient: &http.Client{},
		timeout:         timeout,
	}
}

// Generate sends one generation request and returns its classified
// outcome. Transport errors, bad statuses, and malformed payloads all
// come back as a Failure outcome, never as a raw error.
func (c *Client) Generate(ctx context.Context, query, location string) Outcome {
	env, err := c.call(ctx, query, location)
	if err != nil {
		return failure(err)
	}
	return Classify(*env)
}

// GenerateStream is Generate over the streaming endpoint: progress
// records are delivered through onProgress in send order before the
// final outcome resolves.
func (c *Client) GenerateStream(ctx context.Context, query, location string, onProgress func(ProgressUpdate)) Outcome {
	body, err := json.Marshal(GenerateRequest{Query: query, Location: location})
	if err != nil {
		return failure(fmt.Errorf("failed to marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/api/adventures/stream", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return failure(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.streamingClient.Do(httpReq)
	if err != nil {
		return failure(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return failure(fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	env, err := c.readStream(resp.Body, onProgress)
	if err != nil {
		return failure(err)
	}
	return Classify(*env)
}

// readStream consumes NDJSON lines until the result record. Malformed
// lines are skipped.
func (c *Client) readStream(body io.Reader, onProgress func(ProgressUpdate)) (*Envelope, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record streamLine
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}

		switch record.Type {
		case "progress":
			if record.Progress != nil && onProgress != nil {
				onProgress(*record.Progress)
			}
		case "result":
			if record.Result == nil {
				return nil, fmt.Errorf("result record missing payload")
			}
			return record.Result, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return nil, fmt.Errorf("stream ended without a result")
}

// call performs the non-streaming round trip.
func (c *Client) call(ctx context.Context, query, location string) (*Envelope, error) {
	body, err := json.Marshal(GenerateRequest{Query: query, Location: location})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/adventures", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &env, nil
}

// HealthCheck verifies that the generation API is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/api/system/status", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation API is unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generation API returned status %d", resp.StatusCode)
	}
	return nil
}

func failure(err error) Outcome {
	return Outcome{
		Kind:    OutcomeFailure,
		Failure: &FailureOutcome{Reason: err.Error()},
	}
}
