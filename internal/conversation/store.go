// Package conversation persists chat transcripts through the MiniQuest
// conversation API and schedules the debounced autosave.
package conversation

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

// APIError is a non-success response from the conversation API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("conversation API returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("conversation API returned status %d", e.Status)
}

// Store is an HTTP client for conversation CRUD. It only ever reads the
// in-memory transcript handed to it; the orchestrator owns mutation.
type Store struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewStore creates a new conversation store client.
func NewStore(baseURL string, timeout time.Duration) *Store {
	return &Store{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

type saveRequest struct {
	Messages []chat.Message `json:"messages"`
	Location string         `json:"location"`
	QueryID  string         `json:"query_id,omitempty"`
}

type updateRequest struct {
	Messages []chat.Message `json:"messages"`
}

type apiResponse struct {
	Success        bool                        `json:"success"`
	ConversationID string                      `json:"conversation_id,omitempty"`
	Conversation   *chat.Conversation          `json:"conversation,omitempty"`
	Conversations  []chat.ConversationMetadata `json:"conversations,omitempty"`
	Count          int                         `json:"count,omitempty"`
	Message        string                      `json:"message,omitempty"`
}

// Create saves a new conversation and returns its id.
func (s *Store) Create(ctx context.Context, messages []chat.Message, location, queryID string) (string, error) {
	req := saveRequest{Messages: messages, Location: location, QueryID: queryID}
	var resp apiResponse
	if err := s.do(ctx, "POST", "/api/conversations", req, &resp); err != nil {
		return "", err
	}
	if resp.ConversationID == "" {
		return "", fmt.Errorf("conversation API returned no id")
	}
	return resp.ConversationID, nil
}

// Update replaces the message list of an existing conversation.
func (s *Store) Update(ctx context.Context, id string, messages []chat.Message) error {
	return s.do(ctx, "PUT", "/api/conversations/"+id, updateRequest{Messages: messages}, nil)
}

// List returns conversation metadata, most recent first.
func (s *Store) List(ctx context.Context, limit int) ([]chat.ConversationMetadata, error) {
	var resp apiResponse
	path := fmt.Sprintf("/api/conversations?limit=%d", limit)
	if err := s.do(ctx, "GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// Get fetches a full conversation by id.
func (s *Store) Get(ctx context.Context, id string) (*chat.Conversation, error) {
	var resp apiResponse
	if err := s.do(ctx, "GET", "/api/conversations/"+id, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Conversation == nil {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	return resp.Conversation, nil
}

// Remove deletes a conversation.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.do(ctx, "DELETE", "/api/conversations/"+id, nil, nil)
}

// HealthCheck verifies that the conversation API is accessible.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.do(ctx, "GET", "/api/conversations?limit=1", nil, nil); err != nil {
		return fmt.Errorf("conversation API is unreachable at %s: %w", s.baseURL, err)
	}
	return nil
}

// do performs one request and decodes the shared response envelope.
func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var fail apiResponse
		respBody, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(respBody, &fail)
		return &APIError{Status: resp.StatusCode, Message: fail.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
