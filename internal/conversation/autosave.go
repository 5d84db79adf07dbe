package conversation

import (
	"context"
	"sync"
	"time"

	"miniquest/internal/chat"
	"miniquest/internal/logging"
)

// Persister is the slice of Store the autosaver uses.
type Persister interface {
	Create(ctx context.Context, messages []chat.Message, location, queryID string) (string, error)
	Update(ctx context.Context, id string, messages []chat.Message) error
}

// Snapshot is the transcript state captured at mutation time. The
// autosaver persists whichever snapshot was touched last.
type Snapshot struct {
	Messages []chat.Message
	Location string
	QueryID  string
}

// Autosaver coalesces transcript mutations into one persistence write
// per quiet period. Touch restarts a single cancellable timer; only the
// final snapshot inside the window is written. The first successful
// write creates the conversation and later ones update it.
type Autosaver struct {
	store Persister
	delay time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	pending  *Snapshot
	activeID string
	// gen increments on Detach so a create that raced with it does not
	// re-attach a conversation the user already walked away from.
	gen int
	// timerGen identifies the scheduled timer. A fire from a superseded
	// timer must not persist: a Touch that landed after the timer fired
	// but before fire ran still gets its full quiet period.
	timerGen int

	// onError surfaces persistence failures as non-blocking notices.
	// The in-memory transcript is the source of truth, so a failed save
	// never rolls anything back.
	onError func(error)
}

// NewAutosaver creates an autosaver with the given debounce window.
func NewAutosaver(store Persister, delay time.Duration, onError func(error)) *Autosaver {
	return &Autosaver{
		store:   store,
		delay:   delay,
		onError: onError,
	}
}

// Touch schedules a save of the snapshot after the debounce window,
// cancelling any save already scheduled.
func (a *Autosaver) Touch(snap Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = &snap
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timerGen++
	gen := a.timerGen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// fire persists the pending snapshot, if the timer was not superseded.
func (a *Autosaver) fire(gen int) {
	a.mu.Lock()
	if gen != a.timerGen {
		a.mu.Unlock()
		return
	}
	snap := a.pending
	a.pending = nil
	a.mu.Unlock()

	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.persist(ctx, *snap)
}

// Flush persists any pending snapshot immediately.
func (a *Autosaver) Flush(ctx context.Context) {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.timerGen++
	snap := a.pending
	a.pending = nil
	a.mu.Unlock()

	if snap == nil {
		return
	}
	a.persist(ctx, *snap)
}

// Stop cancels any scheduled save and drops the pending snapshot.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.timerGen++
	a.pending = nil
}

// ActiveID returns the id of the conversation being saved into, or ""
// when the next save will create a new one.
func (a *Autosaver) ActiveID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeID
}

// Attach makes future saves update an existing conversation.
func (a *Autosaver) Attach(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activeID = id
}

// Detach clears the active conversation, so the next save creates a new
// one. Any pending snapshot for the old conversation is dropped.
func (a *Autosaver) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.timerGen++
	a.pending = nil
	a.activeID = ""
	a.gen++
}

func (a *Autosaver) persist(ctx context.Context, snap Snapshot) {
	a.mu.Lock()
	id := a.activeID
	gen := a.gen
	a.mu.Unlock()

	if id == "" {
		newID, err := a.store.Create(ctx, snap.Messages, snap.Location, snap.QueryID)
		if err != nil {
			a.report(err)
			return
		}
		a.mu.Lock()
		// A Detach during the create wins.
		if a.gen == gen {
			a.activeID = newID
		}
		a.mu.Unlock()
		return
	}

	if err := a.store.Update(ctx, id, snap.Messages); err != nil {
		a.report(err)
	}
}

func (a *Autosaver) report(err error) {
	logging.Logger.Warn("autosave failed", "err", err)
	if a.onError != nil {
		a.onError(err)
	}
}
