// Package pending implements the pending-request table (C1): it
// allocates correlation ids, tracks each in-flight JSON-RPC request
// through a small state machine, matches solicited responses back to
// their request, and ages out entries that never got an answer.
//
// The table deliberately never touches the network: Enqueue only
// reserves a slot and stores the payload the caller already built: the
// actual send happens in the network loop, which calls MarkSent once the
// frame is on the wire.
package pending

import (
	"sync"
	"time"
)

// Capacity is the maximum number of concurrently tracked requests.
const Capacity = 64

// Timeout is the maximum time a request may sit in StatePending before
// the sweep marks it StateTimeout.
const Timeout = 30 * time.Second

// State is a pending request's position in its lifecycle.
type State int

const (
	// StateQueued means the request has an id and a payload but hasn't
	// been handed to the transport yet.
	StateQueued State = iota
	// StatePending means the request was sent and awaits a response.
	StatePending
	// StateCompleted means a matching response arrived.
	StateCompleted
	// StateTimeout means no response arrived within Timeout.
	StateTimeout
	// StateError means the table itself (not the device) could not carry
	// the request through, e.g. the transport closed mid-flight.
	StateError
)

// String renders the state for logs.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StatePending:
		return "pending"
	case StateCompleted:
		return "completed"
	case StateTimeout:
		return "timeout"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one tracked request. Request and Response are owned by the
// entry; callers must not mutate the strings returned from accessors.
type Entry struct {
	ID        int
	State     State
	Request   string
	Response  string
	Timestamp time.Time

	done chan struct{}
}

// Done returns the channel that is closed once the entry leaves
// StatePending (completed, timed out, or errored). Nothing in this
// session currently blocks on it — writes are fire-and-forget per the
// filesystem contract — but it is the synchronisation handle the table's
// contract promises to any caller that does want to wait.
func (e *Entry) Done() <-chan struct{} {
	return e.done
}

// Table is the pending-request table. The zero value is not usable; use
// New.
type Table struct {
	mu      sync.Mutex
	entries map[int]*Entry
	nextID  int
}

// New constructs an empty table. Ids start at 1.
func New() *Table {
	return &Table{
		entries: make(map[int]*Entry, Capacity),
		nextID:  1,
	}
}

// NextID peeks the id that the next Enqueue call will assign, without
// consuming it. Callers that need to embed their own id in the request
// payload (every verb in the intention layer does) call this before
// building the JSON.
func (t *Table) NextID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextID
}

// Enqueue reserves a slot, assigns it the next sequential id, and stores
// request as the entry's payload in StateQueued.
func (t *Table) Enqueue(request string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) >= Capacity {
		return 0, &ErrQueueFull{}
	}

	id := t.nextID
	t.nextID++

	t.entries[id] = &Entry{
		ID:        id,
		State:     StateQueued,
		Request:   request,
		Timestamp: time.Now(),
		done:      make(chan struct{}),
	}
	return id, nil
}

// TakeNextQueued returns the oldest (lowest id) entry still in
// StateQueued, without changing its state. It returns ok=false if there
// is none.
func (t *Table) TakeNextQueued() (id int, request string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	best := -1
	for candidateID, e := range t.entries {
		if e.State != StateQueued {
			continue
		}
		if best == -1 || candidateID < best {
			best = candidateID
		}
	}

	if best == -1 {
		return 0, "", false
	}
	return best, t.entries[best].Request, true
}

// MarkSent transitions id from StateQueued to StatePending and resets its
// timestamp to now, so the timeout is measured from the moment it went
// out on the wire rather than from when it was queued.
func (t *Table) MarkSent(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return &ErrNotFound{}
	}
	if e.State != StateQueued {
		return &ErrWrongState{}
	}

	e.State = StatePending
	e.Timestamp = time.Now()
	return nil
}

// Complete transitions id from StatePending to StateCompleted, stores the
// response, and wakes anyone waiting on the entry's Done channel. An
// unmatched response (no entry with this id) is reported to the caller so
// it can be logged and treated as unsolicited; an entry not in
// StatePending is left as is and ErrWrongState is returned.
func (t *Table) Complete(id int, response string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return &ErrNotFound{}
	}
	if e.State != StatePending {
		return &ErrWrongState{}
	}

	e.State = StateCompleted
	e.Response = response
	close(e.done)
	return nil
}

// Fail transitions id from StatePending to StateError and wakes its
// waiters. It's used when the transport itself fails in a way that makes
// a response impossible to ever receive (e.g. the connection is being
// torn down with this request already on the wire), as distinct from a
// plain timeout.
func (t *Table) Fail(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return &ErrNotFound{}
	}
	if e.State != StatePending {
		return &ErrWrongState{}
	}

	e.State = StateError
	close(e.done)
	return nil
}

// RequestOf returns the stored request payload for id, for dispatcher
// correlation (looking up which method a response belongs to).
func (t *Table) RequestOf(id int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return "", false
	}
	return e.Request, true
}

// SweepTimeouts transitions every entry that has been StatePending for
// longer than Timeout into StateTimeout (waking its waiters), then
// reclaims every entry currently in StateCompleted, StateTimeout or
// StateError, returning their slots to the free pool.
func (t *Table) SweepTimeouts(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.State == StatePending && now.Sub(e.Timestamp) > Timeout {
			e.State = StateTimeout
			close(e.done)
		}
	}

	for id, e := range t.entries {
		if e.State == StateCompleted || e.State == StateTimeout || e.State == StateError {
			delete(t.entries, id)
		}
	}
}

// Len reports how many slots are currently occupied, for tests and
// diagnostics.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
