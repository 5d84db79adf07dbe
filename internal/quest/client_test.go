package quest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/adventures", r.URL.Path)

		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "coffee crawl", req.Query)
		assert.Equal(t, "Boston, MA", req.Location)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"adventures":[{"title":"Espresso Tour"}],"metadata":{"query_id":"q-1"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	outcome := client.Generate(context.Background(), "coffee crawl", "Boston, MA")

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	require.Len(t, outcome.Success.Adventures, 1)
	assert.Equal(t, "Espresso Tour", outcome.Success.Adventures[0].Title)
	assert.Equal(t, "q-1", outcome.QueryID)
}

func TestGenerateBadStatusIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	outcome := client.Generate(context.Background(), "anything", "Boston, MA")

	require.Equal(t, OutcomeFailure, outcome.Kind)
	assert.Contains(t, outcome.Failure.Reason, "500")
}

func TestGenerateMalformedBodyIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": tru`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	outcome := client.Generate(context.Background(), "anything", "Boston, MA")
	assert.Equal(t, OutcomeFailure, outcome.Kind)
}

func TestGenerateUnreachableIsFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)
	outcome := client.Generate(context.Background(), "anything", "Boston, MA")
	assert.Equal(t, OutcomeFailure, outcome.Kind)
}

func TestGenerateStreamDeliversProgressThenResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/adventures/stream", r.URL.Path)
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"type":"progress","progress":{"step":"research","agent":"scout","status":"in_progress","message":"finding venues","progress":0.2}}`)
		fmt.Fprintln(w, `not json at all`)
		fmt.Fprintln(w, `{"type":"progress","progress":{"step":"planning","agent":"planner","status":"complete","message":"route ready","progress":0.9}}`)
		fmt.Fprintln(w, `{"type":"result","result":{"success":true,"adventures":[{"title":"Night Market"}]}}`)
	}))
	defer server.Close()

	var updates []ProgressUpdate
	client := NewClient(server.URL, 5*time.Second)
	outcome := client.GenerateStream(context.Background(), "evening plans", "San Francisco Bay Area, CA", func(u ProgressUpdate) {
		updates = append(updates, u)
	})

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	require.Len(t, updates, 2)
	assert.Equal(t, "scout", updates[0].Agent)
	assert.Equal(t, "planner", updates[1].Agent)
	assert.Equal(t, "Night Market", outcome.Success.Adventures[0].Title)
}

func TestGenerateStreamWithoutResultIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"type":"progress","progress":{"step":"research","agent":"scout","status":"in_progress"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	outcome := client.GenerateStream(context.Background(), "evening plans", "Boston, MA", nil)

	require.Equal(t, OutcomeFailure, outcome.Kind)
	assert.Contains(t, outcome.Failure.Reason, "without a result")
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/system/status", r.URL.Path)
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	assert.NoError(t, client.HealthCheck(context.Background()))

	bad := NewClient("http://127.0.0.1:1", time.Second)
	assert.Error(t, bad.HealthCheck(context.Background()))
}
