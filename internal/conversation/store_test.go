package conversation

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

	"miniquest/internal/chat"
)

// fakeConversationAPI is an in-memory stand-in for the conversation
// endpoints, enough to round-trip CRUD calls.
type fakeConversationAPI struct {
	conversations map[string]*chat.Conversation
	nextID        int
}

func newFakeConversationAPI() *fakeConversationAPI {
	return &fakeConversationAPI{conversations: make(map[string]*chat.Conversation), nextID: 1}
}

func (f *fakeConversationAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/conversations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "POST":
			var req saveRequest
			json.NewDecoder(r.Body).Decode(&req)
			id := fmt.Sprintf("conv-%d", f.nextID)
			f.nextID++
			f.conversations[id] = &chat.Conversation{
				ID:       id,
				Messages: req.Messages,
				Location: req.Location,
				QueryID:  req.QueryID,
			}
			json.NewEncoder(w).Encode(apiResponse{Success: true, ConversationID: id})
		case "GET":
			var metas []chat.ConversationMetadata
			for id, conv := range f.conversations {
				metas = append(metas, chat.ConversationMetadata{ID: id, MessageCount: len(conv.Messages)})
			}
			json.NewEncoder(w).Encode(apiResponse{Success: true, Conversations: metas, Count: len(metas)})
		}
	})
	mux.HandleFunc("/api/conversations/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/api/conversations/"):]
		conv, ok := f.conversations[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(apiResponse{Message: "conversation not found"})
			return
		}
		switch r.Method {
		case "GET":
			json.NewEncoder(w).Encode(apiResponse{Success: true, Conversation: conv})
		case "PUT":
			var req updateRequest
			json.NewDecoder(r.Body).Decode(&req)
			conv.Messages = req.Messages
			json.NewEncoder(w).Encode(apiResponse{Success: true})
		case "DELETE":
			delete(f.conversations, id)
			json.NewEncoder(w).Encode(apiResponse{Success: true})
		}
	})
	return mux
}

func TestStoreRoundTrip(t *testing.T) {
	api := newFakeConversationAPI()
	server := httptest.NewServer(api.handler())
	defer server.Close()

	store := NewStore(server.URL, 5*time.Second)
	ctx := context.Background()

	messages := []chat.Message{
		chat.NewMessage(chat.RoleUser, "coffee in boston"),
		chat.NewMessage(chat.RoleAssistant, "here are three ideas"),
		chat.NewMessage(chat.RoleUser, "cheaper please"),
	}

	id, err := store.Create(ctx, messages, "Boston, MA", "q-7")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	conv, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Boston, MA", conv.Location)
	assert.Equal(t, "q-7", conv.QueryID)
	require.Len(t, conv.Messages, 3)
	for i, msg := range conv.Messages {
		assert.Equal(t, messages[i].Content, msg.Content, "message %d out of order", i)
		assert.Equal(t, messages[i].Role, msg.Role)
	}

	messages = append(messages, chat.NewMessage(chat.RoleAssistant, "budget picks"))
	require.NoError(t, store.Update(ctx, id, messages))

	conv, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 4)

	metas, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, id, metas[0].ID)
	assert.Equal(t, 4, metas[0].MessageCount)

	require.NoError(t, store.Remove(ctx, id))
	_, err = store.Get(ctx, id)
	require.Error(t, err)
}

func TestStoreAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"success":false,"message":"conversation not found"}`)
	}))
	defer server.Close()

	store := NewStore(server.URL, 5*time.Second)
	err := store.Update(context.Background(), "missing", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Message, "not found")
}
