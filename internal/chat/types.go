package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single transcript entry. The wire name for the role field
// is "type" to match the conversation API.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh id and the current time.
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Venue is one stop of an adventure, with optional research metadata
// attached by the backend's discovery agents.
type Venue struct {
	Name               string  `json:"name"`
	Address            string  `json:"address,omitempty"`
	Description        string  `json:"description,omitempty"`
	Rating             float64 `json:"rating,omitempty"`
	TotalInsights      int     `json:"total_insights,omitempty"`
	ResearchConfidence float64 `json:"research_confidence,omitempty"`
}

// Researched reports whether the backend attached venue research.
func (v Venue) Researched() bool {
	return v.TotalInsights > 0 || v.ResearchConfidence > 0
}

// Step is one entry of an adventure itinerary.
type Step struct {
	Order    int    `json:"order,omitempty"`
	Venue    string `json:"venue,omitempty"`
	Activity string `json:"activity,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// Adventure is a complete itinerary returned by the generation backend.
type Adventure struct {
	Title       string  `json:"title"`
	Tagline     string  `json:"tagline,omitempty"`
	Description string  `json:"description,omitempty"`
	Duration    int     `json:"duration,omitempty"`
	Cost        float64 `json:"cost,omitempty"`
	Steps       []Step  `json:"steps,omitempty"`
	Locations   []Venue `json:"locations,omitempty"`
	MapURL      string  `json:"map_url,omitempty"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// Conversation is a full persisted transcript.
type Conversation struct {
	ID           string    `json:"_id"`
	Messages     []Message `json:"messages"`
	Location     string    `json:"location"`
	QueryID      string    `json:"query_id,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConversationMetadata is the list-view projection of a conversation.
type ConversationMetadata struct {
	ID           string    `json:"_id"`
	Location     string    `json:"location"`
	Preview      string    `json:"preview"`
	MessageCount int       `json:"message_count"`
	QueryID      string    `json:"query_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
