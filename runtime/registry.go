// Package runtime owns the live connection state: who is connected, which
// rooms each connection belongs to, and the presence/typing/session logic
// on top. All state lives in owned, mutex-guarded tables created at
// process start and discarded on exit; nothing here is durable.
package runtime

import (
	"sync"

	"chatline/contract"
)

// Registry is the single source of truth for "is this user online".
// It keeps two tables:
//   - sinks: every attached connection handle and its delivery endpoint,
//     populated at transport handshake, before any identity is known;
//   - users: userID -> current handle, at most one live entry per user.
//
// Registration is last-connected-wins: a new handle for the same user
// silently supersedes the previous one. Teardown of the superseded
// connection must not evict the newer registration, which is why removal
// goes through UnregisterIfCurrent.
type Registry struct {
	mu    sync.RWMutex
	users map[string]contract.HandleID
	sinks map[contract.HandleID]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]contract.HandleID),
		sinks: make(map[contract.HandleID]contract.EventSink),
	}
}

// Attach records a raw connection and its sink at handshake time.
func (r *Registry) Attach(handle contract.HandleID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[handle] = sink
}

// Detach drops the connection's sink. Called unconditionally on teardown.
func (r *Registry) Detach(handle contract.HandleID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, handle)
}

// Register maps a user to its connection handle, silently overwriting any
// prior mapping. Superseding never produces an error or a notification.
func (r *Registry) Register(userID string, handle contract.HandleID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = handle
}

// UnregisterIfCurrent removes the mapping only if the stored handle still
// equals the given one, and reports whether removal occurred. A stale
// teardown (the user reconnected before the old connection's cleanup ran)
// leaves the newer registration untouched and returns false.
func (r *Registry) UnregisterIfCurrent(userID string, handle contract.HandleID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[userID]
	if !ok || current != handle {
		return false
	}
	delete(r.users, userID)
	return true
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[userID]
	return ok
}

// OnlineUserIDs returns a snapshot of currently registered users, used to
// answer a newly connected client's presence query.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) SinkFor(handle contract.HandleID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[handle]
	return sink, ok
}

// AllSinks returns the delivery endpoints of every attached connection
// except the excluded handle. Used for presence fan-out, which targets
// all connections rather than a room.
func (r *Registry) AllSinks(exclude contract.HandleID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sinks := make([]contract.EventSink, 0, len(r.sinks))
	for handle, sink := range r.sinks {
		if handle == exclude {
			continue
		}
		sinks = append(sinks, sink)
	}
	return sinks
}
