package runtime

import (
	"log/slog"
	"sync"

	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"
)

// SinkResolver turns a connection handle into its delivery endpoint.
// Implemented by Registry; a room only stores handles so that a
// connection's sink is managed in exactly one place even when the
// connection sits in many rooms.
type SinkResolver interface {
	SinkFor(handle contract.HandleID) (contract.EventSink, bool)
}

type set map[contract.HandleID]struct{}

// Rooms routes events to conversation- and user-scoped broadcast groups.
// Membership is tracked with a forward index (room -> handles) and a
// reverse index (handle -> rooms) so LeaveAll doesn't scan every room.
// Rooms have no durable existence: the last leaver deletes the entry.
type Rooms struct {
	mu       sync.RWMutex
	resolver SinkResolver
	rooms    map[domain.RoomID]set
	handles  map[contract.HandleID]map[domain.RoomID]struct{}
	log      *slog.Logger
}

func NewRooms(resolver SinkResolver, log *slog.Logger) *Rooms {
	return &Rooms{
		resolver: resolver,
		rooms:    make(map[domain.RoomID]set),
		handles:  make(map[contract.HandleID]map[domain.RoomID]struct{}),
		log:      log,
	}
}

// Join adds the handle to a room. Joining an already-joined room is a
// no-op, so clients can re-emit "join chat" freely.
func (r *Rooms) Join(handle contract.HandleID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(set)
	}
	r.rooms[roomID][handle] = struct{}{}

	if _, ok := r.handles[handle]; !ok {
		r.handles[handle] = make(map[domain.RoomID]struct{})
	}
	r.handles[handle][roomID] = struct{}{}
}

// LeaveAll removes the handle from every room it belongs to. Called
// unconditionally on teardown; empty rooms are removed so the map does
// not grow forever.
func (r *Rooms) LeaveAll(handle contract.HandleID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.handles[handle] {
		if members, ok := r.rooms[roomID]; ok {
			delete(members, handle)
			if len(members) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	delete(r.handles, handle)
}

// Broadcast delivers the event to every current member of the room except
// the excluded handle. Delivery is best-effort and fire-and-forget: an
// unknown room, an empty room, or a member whose transport silently died
// never raises an error. Cleanup is driven by teardown, not by delivery
// failure.
func (r *Rooms) Broadcast(roomID domain.RoomID, exclude contract.HandleID, e event.DomainEvent) {
	r.mu.RLock()
	members, ok := r.rooms[roomID]
	if !ok {
		r.mu.RUnlock()
		return
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for handle := range members {
		if handle == exclude {
			continue
		}
		if sink, ok := r.resolver.SinkFor(handle); ok {
			sinks = append(sinks, sink)
		}
	}
	r.mu.RUnlock()

	for _, sink := range sinks {
		sink.Consume(e)
	}
}
