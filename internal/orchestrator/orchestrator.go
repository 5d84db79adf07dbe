// Package orchestrator owns the chat transcript and drives one query
// turn end to end: location resolution, generation, outcome
// classification, the single assistant append, and the autosave touch.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"miniquest/internal/chat"
	"miniquest/internal/conversation"
	"miniquest/internal/location"
	"miniquest/internal/logging"
	"miniquest/internal/quest"
)

var (
	// ErrEmptyQuery is the local validation failure for blank input.
	// It is raised before any network call.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrBusy rejects a submission while another request is in flight.
	ErrBusy = errors.New("a request is already in flight")
)

// Generator is the slice of quest.Client the orchestrator uses.
type Generator interface {
	Generate(ctx context.Context, query, location string) quest.Outcome
	GenerateStream(ctx context.Context, query, location string, onProgress func(quest.ProgressUpdate)) quest.Outcome
}

// Saver is the slice of conversation.Autosaver the orchestrator uses.
type Saver interface {
	Touch(conversation.Snapshot)
	Attach(id string)
	Detach()
	Flush(ctx context.Context)
}

// Sinks are the rendering callbacks. They are invoked outside the
// orchestrator lock and must not call back into it.
type Sinks struct {
	OnUserMessage      func(chat.Message)
	OnAssistantMessage func(chat.Message, quest.Outcome)
	OnProgress         func(quest.ProgressUpdate)
}

// Orchestrator is the query state machine. All fields are guarded by mu;
// concurrency comes from overlapping progress callbacks and late outcome
// deliveries, which are filtered by completion id.
type Orchestrator struct {
	resolver *location.Resolver
	client   Generator
	saver    Saver
	sinks    Sinks

	streamProgress bool
	maxProgress    int

	mu          sync.Mutex
	messages    []chat.Message
	inFlight    bool
	currentID   string
	handledID   string
	progress    []quest.ProgressUpdate
	suggestions []string
	queryID     string
	adventures  []chat.Adventure
}

// New creates an orchestrator in the idle state with an empty transcript.
func New(resolver *location.Resolver, client Generator, saver Saver, sinks Sinks, maxProgress int, streamProgress bool) *Orchestrator {
	return &Orchestrator{
		resolver:       resolver,
		client:         client,
		saver:          saver,
		sinks:          sinks,
		maxProgress:    maxProgress,
		streamProgress: streamProgress,
	}
}

// Submit runs one query turn. It returns ErrEmptyQuery for blank input
// without touching the network and ErrBusy while a request is in
// flight. The call blocks until the outcome is appended.
func (o *Orchestrator) Submit(ctx context.Context, query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ErrEmptyQuery
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return ErrBusy
	}
	o.inFlight = true
	completionID := uuid.New().String()
	o.currentID = completionID
	o.progress = nil
	o.suggestions = nil

	userMsg := chat.NewMessage(chat.RoleUser, trimmed)
	o.messages = append(o.messages, userMsg)

	state := o.resolver.Resolve(trimmed)
	o.mu.Unlock()

	if o.sinks.OnUserMessage != nil {
		o.sinks.OnUserMessage(userMsg)
	}

	logging.Logger.Info("submitting query",
		"completion_id", completionID, "location", state.DisplayLocation)

	var outcome quest.Outcome
	if o.streamProgress {
		outcome = o.client.GenerateStream(ctx, trimmed, state.DisplayLocation, func(update quest.ProgressUpdate) {
			o.recordProgress(completionID, update)
		})
	} else {
		outcome = o.client.Generate(ctx, trimmed, state.DisplayLocation)
	}

	o.Resolve(completionID, outcome)
	return nil
}

// recordProgress appends to the bounded progress history, dropping
// updates that belong to a superseded request.
func (o *Orchestrator) recordProgress(completionID string, update quest.ProgressUpdate) {
	o.mu.Lock()
	if completionID != o.currentID || !o.inFlight {
		o.mu.Unlock()
		return
	}
	o.progress = append(o.progress, update)
	if len(o.progress) > o.maxProgress {
		o.progress = o.progress[len(o.progress)-o.maxProgress:]
	}
	o.mu.Unlock()

	if o.sinks.OnProgress != nil {
		o.sinks.OnProgress(update)
	}
}

// Resolve consumes a completed request. The assistant append runs at
// most once per completion id: stale ids (superseded requests) and
// repeated deliveries of the current id are both dropped.
func (o *Orchestrator) Resolve(completionID string, outcome quest.Outcome) {
	o.mu.Lock()
	if completionID != o.currentID {
		o.mu.Unlock()
		logging.Logger.Debug("ignoring stale outcome", "completion_id", completionID)
		return
	}
	if completionID == o.handledID {
		o.mu.Unlock()
		logging.Logger.Debug("ignoring duplicate outcome", "completion_id", completionID)
		return
	}
	o.handledID = completionID
	o.inFlight = false

	assistantMsg := chat.NewMessage(chat.RoleAssistant, RenderOutcome(outcome))
	o.messages = append(o.messages, assistantMsg)
	o.suggestions = append([]string(nil), outcome.Suggestions()...)
	if outcome.Kind == quest.OutcomeSuccess {
		o.adventures = append([]chat.Adventure(nil), outcome.Success.Adventures...)
	} else {
		o.adventures = nil
	}
	if outcome.QueryID != "" {
		o.queryID = outcome.QueryID
	}

	snapshot := conversation.Snapshot{
		Messages: append([]chat.Message(nil), o.messages...),
		Location: o.resolver.State().DisplayLocation,
		QueryID:  o.queryID,
	}
	o.mu.Unlock()

	o.saver.Touch(snapshot)

	if o.sinks.OnAssistantMessage != nil {
		o.sinks.OnAssistantMessage(assistantMsg, outcome)
	}
}

// Messages returns a copy of the transcript.
func (o *Orchestrator) Messages() []chat.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]chat.Message(nil), o.messages...)
}

// Suggestions returns the follow-up suggestions of the last outcome.
func (o *Orchestrator) Suggestions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.suggestions...)
}

// Progress returns the bounded progress history of the current turn.
func (o *Orchestrator) Progress() []quest.ProgressUpdate {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]quest.ProgressUpdate(nil), o.progress...)
}

// LastAdventures returns the itineraries of the latest turn, or nil
// when the latest turn was not a success.
func (o *Orchestrator) LastAdventures() []chat.Adventure {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]chat.Adventure(nil), o.adventures...)
}

// InFlight reports whether a request is running.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// Location returns the current working location.
func (o *Orchestrator) Location() location.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolver.State()
}

// SetManualLocation validates and applies a manual address override.
func (o *Orchestrator) SetManualLocation(address string) (location.State, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolver.SetManualAddress(address)
}

// ResetLocation clears the manual override.
func (o *Orchestrator) ResetLocation() location.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolver.ResetToAutoDetect()
}

// NewChat flushes any pending save, detaches the active conversation,
// and empties the transcript.
func (o *Orchestrator) NewChat(ctx context.Context) {
	o.saver.Flush(ctx)
	o.saver.Detach()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = nil
	o.suggestions = nil
	o.progress = nil
	o.adventures = nil
	o.currentID = ""
	o.handledID = ""
	o.queryID = ""
}

// LoadConversation replaces the transcript with a persisted one and
// makes it the autosave target.
func (o *Orchestrator) LoadConversation(conv *chat.Conversation) {
	o.saver.Detach()
	o.saver.Attach(conv.ID)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append([]chat.Message(nil), conv.Messages...)
	o.suggestions = nil
	o.progress = nil
	o.adventures = nil
	o.currentID = ""
	o.handledID = ""
	o.queryID = conv.QueryID
}

// DropActiveConversation clears the transcript after the active
// conversation was deleted remotely. Equivalent to starting a new,
// empty chat without a flush.
func (o *Orchestrator) DropActiveConversation() {
	o.saver.Detach()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = nil
	o.suggestions = nil
	o.progress = nil
	o.adventures = nil
	o.currentID = ""
	o.handledID = ""
	o.queryID = ""
}
