package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"miniquest/internal/chat"
	"miniquest/internal/quest"
)

func TestRenderSuccess(t *testing.T) {
	outcome := quest.Outcome{
		Kind: quest.OutcomeSuccess,
		Success: &quest.SuccessOutcome{
			Adventures: []chat.Adventure{
				{
					Title:    "North End Espresso Crawl",
					Tagline:  "Three cafes, one afternoon",
					Duration: 150,
					Cost:     40,
					Locations: []chat.Venue{
						{Name: "Caffe Vittoria", Address: "290 Hanover St"},
						{Name: "Modern Pastry"},
					},
				},
				{Title: "Harborwalk Loop", Duration: 60},
			},
			InsightsTotal: 5,
			AvgConfidence: 0.8,
		},
	}

	text := RenderOutcome(outcome)
	assert.Contains(t, text, "Here are 2 adventures")
	assert.Contains(t, text, "## 1. North End Espresso Crawl")
	assert.Contains(t, text, "*Three cafes, one afternoon*")
	assert.Contains(t, text, "2h30m · ~$40")
	assert.Contains(t, text, "**Caffe Vittoria** · 290 Hanover St")
	assert.Contains(t, text, "## 2. Harborwalk Loop")
	assert.Contains(t, text, "1h\n")
	assert.Contains(t, text, "Backed by 5 research insights (80% confidence)")
}

func TestRenderSuccessSingleWithoutResearch(t *testing.T) {
	outcome := quest.Outcome{
		Kind:    quest.OutcomeSuccess,
		Success: &quest.SuccessOutcome{Adventures: []chat.Adventure{{Title: "Walk"}}},
	}

	text := RenderOutcome(outcome)
	assert.Contains(t, text, "Here's an adventure")
	assert.NotContains(t, text, "research insights")
	assert.NotContains(t, text, "~$")
}

func TestRenderClarificationIsMessageOnly(t *testing.T) {
	outcome := quest.Outcome{
		Kind: quest.OutcomeClarification,
		Clarification: &quest.ClarificationOutcome{
			Message:     "Morning or evening?",
			Suggestions: []string{"Morning coffee tour"},
		},
	}

	// Suggestions live in orchestrator state, not the transcript.
	text := RenderOutcome(outcome)
	assert.Equal(t, "Morning or evening?", text)
}

func TestRenderOutOfScopeListsServices(t *testing.T) {
	outcome := quest.Outcome{
		Kind: quest.OutcomeOutOfScope,
		OutOfScope: &quest.OutOfScopeOutcome{
			Message: "Multi-day trips are beyond me.",
			RecommendedServices: []quest.RecommendedService{
				{Name: "TripPlanner", URL: "https://trips.example.com", Description: "week-long itineraries"},
			},
		},
	}

	text := RenderOutcome(outcome)
	assert.Contains(t, text, "Multi-day trips are beyond me.")
	assert.Contains(t, text, "[TripPlanner](https://trips.example.com): week-long itineraries")
}

func TestRenderUnrelatedDefaultCopy(t *testing.T) {
	outcome := quest.Outcome{Kind: quest.OutcomeUnrelated, Unrelated: &quest.UnrelatedOutcome{}}
	assert.Contains(t, RenderOutcome(outcome), "local adventures")
}

func TestRenderFailure(t *testing.T) {
	outcome := quest.Outcome{Kind: quest.OutcomeFailure, Failure: &quest.FailureOutcome{Reason: "backend down"}}
	assert.Equal(t, "Sorry, something went wrong: backend down", RenderOutcome(outcome))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "45 min", formatMinutes(45))
	assert.Equal(t, "2h", formatMinutes(120))
	assert.Equal(t, "1h05m", formatMinutes(65))
}

func TestPreview(t *testing.T) {
	messages := []chat.Message{
		chat.NewMessage(chat.RoleAssistant, "welcome"),
		chat.NewMessage(chat.RoleUser, "coffee crawl in the north end"),
	}
	assert.Equal(t, "coffee crawl in the north end", Preview(messages))

	long := strings.Repeat("x", 80)
	assert.Equal(t, strings.Repeat("x", 57)+"...", Preview([]chat.Message{chat.NewMessage(chat.RoleUser, long)}))

	assert.Empty(t, Preview(nil))
}
