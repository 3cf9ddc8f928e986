package pending

import (
	"fmt"
	"sync"
	"time"

	"github.com/kazuph/slack-bridge/internal/models"
)

// State tags an entry's position in its lifecycle. An entry transitions
// from Pending to exactly one of Resolved or Expired; the losing caller
// observes "not found".
type State int

const (
	StatePending State = iota
	StateResolved
	StateExpired
)

// Mode distinguishes how an answer reaches the asker.
type Mode string

const (
	// ModeWait delivers the answer to a caller blocked on Wait.
	ModeWait Mode = "wait"
	// ModeTmux has no blocked caller; the answer is typed into a pane.
	ModeTmux Mode = "tmux"
)

// Entry is one outstanding question batch awaiting a human answer.
type Entry struct {
	QuestionID  string
	Questions   []models.Question
	MessageTS   string
	SessionInfo string
	PaneID      string
	Mode        Mode
	CreatedAt   time.Time

	state  State
	waiter chan models.Answer
}

// Wait returns the channel the resolution is delivered on. Nil for
// tmux-mode entries.
func (e *Entry) Wait() <-chan models.Answer {
	return e.waiter
}

// Table is the pending-request table: the only shared mutable state in the
// bridge. All mutations happen under one mutex so a resolve racing an
// expire on the same id can never both win. Nothing under the lock blocks;
// Slack I/O is sequenced strictly before or after table calls.
type Table struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Register adds a new entry under questionID. A duplicate id is a caller
// bug, not a race (ids are generated by the ask path), so it is an error.
func (t *Table) Register(questionID string, entry *Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[questionID]; ok {
		return fmt.Errorf("question %s already pending", questionID)
	}
	entry.QuestionID = questionID
	entry.state = StatePending
	if entry.Mode == "" {
		entry.Mode = ModeWait
	}
	if entry.Mode == ModeWait {
		// Buffer one so the resolver never blocks on delivery.
		entry.waiter = make(chan models.Answer, 1)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	t.entries[questionID] = entry
	return nil
}

// Lookup returns the entry if it is still pending. Used by the callback
// path to read thread/pane metadata without transitioning state.
func (t *Table) Lookup(questionID string) (*Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[questionID]
	return entry, ok
}

// Resolve transitions the entry to Resolved and removes it. It returns the
// entry and true only for the first resolution attempt; any later resolve
// or expire on the same id observes "not found". For wait-mode entries the
// answer has already been placed on the waiter channel when this returns.
func (t *Table) Resolve(questionID string, answer models.Answer) (*Entry, bool) {
	return t.transition(questionID, answer, StateResolved)
}

// Expire is the timeout path: same first-wins semantics as Resolve.
func (t *Table) Expire(questionID string) (*Entry, bool) {
	answer := models.Answer{
		Err:         "timeout",
		Message:     "No answer received within the response timeout",
		OptionIndex: -1,
		Timestamp:   time.Now().UnixMilli(),
	}
	return t.transition(questionID, answer, StateExpired)
}

func (t *Table) transition(questionID string, answer models.Answer, to State) (*Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[questionID]
	if !ok || entry.state != StatePending {
		return nil, false
	}
	entry.state = to
	delete(t.entries, questionID)
	if entry.waiter != nil {
		entry.waiter <- answer
	}
	return entry, true
}

// Size reports the number of outstanding entries, for health reporting.
func (t *Table) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
