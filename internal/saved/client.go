// Package saved is a thin pass-through client for the saved-adventures
// API. No orchestration logic lives here.
package saved

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"miniquest/internal/chat"
)

// SavedAdventure is one saved itinerary.
type SavedAdventure struct {
	ID        string         `json:"_id"`
	Adventure chat.Adventure `json:"adventure_data"`
	Rating    int            `json:"rating,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	SavedAt   time.Time      `json:"saved_at"`
	Completed bool           `json:"completed"`
}

// Client handles communication with the saved-adventures API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new saved-adventures client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Save stores an adventure and returns its id.
func (c *Client) Save(ctx context.Context, adventure chat.Adventure) (string, error) {
	body, err := json.Marshal(map[string]any{"adventure_data": adventure})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/saved-adventures", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("saved-adventures API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success     bool   `json:"success"`
		AdventureID string `json:"adventure_id"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return result.AdventureID, nil
}

// List returns all saved adventures.
func (c *Client) List(ctx context.Context) ([]SavedAdventure, error) {
	url := fmt.Sprintf("%s/api/saved-adventures", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("saved-adventures API returned status %d", resp.StatusCode)
	}

	var result struct {
		Success    bool             `json:"success"`
		Adventures []SavedAdventure `json:"adventures"`
		Total      int              `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return result.Adventures, nil
}

// Delete removes a saved adventure.
func (c *Client) Delete(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/api/saved-adventures/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("saved-adventures API returned status %d", resp.StatusCode)
	}
	return nil
}
