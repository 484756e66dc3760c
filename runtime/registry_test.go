package runtime

import (
	"sync"
	"testing"

	"chatline/contract"
	"chatline/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordSink is a hand-rolled EventSink capturing everything it consumes.
type recordSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordSink) Consume(e event.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, e := range s.events {
		names = append(names, e.EventName())
	}
	return names
}

func (s *recordSink) all() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

func TestRegistry_Register_And_IsOnline(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	handle := contract.HandleID(uuid.NewString())

	// Given no registration, the user is offline
	req.False(registry.IsOnline(userID))
	req.False(registry.UnregisterIfCurrent(userID, handle))

	// When the user registers
	registry.Register(userID, handle)

	// Then the user is online
	req.True(registry.IsOnline(userID))
	req.Contains(registry.OnlineUserIDs(), userID)
}

func TestRegistry_Stale_Unregister_Keeps_Newer_Registration(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	oldHandle := contract.HandleID(uuid.NewString())
	newHandle := contract.HandleID(uuid.NewString())

	// Given a registration superseded by a reconnect
	registry.Register(userID, oldHandle)
	registry.Register(userID, newHandle)

	// When the old connection's teardown runs
	removed := registry.UnregisterIfCurrent(userID, oldHandle)

	// Then the newer registration survives
	req.False(removed)
	req.True(registry.IsOnline(userID))

	// And the current handle can still unregister
	req.True(registry.UnregisterIfCurrent(userID, newHandle))
	req.False(registry.IsOnline(userID))
}

func TestRegistry_AllSinks_Excludes_Handle(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	h1 := contract.HandleID("h1")
	h2 := contract.HandleID("h2")
	s1 := &recordSink{}
	s2 := &recordSink{}

	registry.Attach(h1, s1)
	registry.Attach(h2, s2)

	sinks := registry.AllSinks(h1)
	req.Len(sinks, 1)
	req.Same(s2, sinks[0].(*recordSink))

	registry.Detach(h2)
	req.Empty(registry.AllSinks(h1))
}

func TestRegistry_SinkFor(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	handle := contract.HandleID("h1")
	sink := &recordSink{}

	_, ok := registry.SinkFor(handle)
	req.False(ok)

	registry.Attach(handle, sink)
	got, ok := registry.SinkFor(handle)
	req.True(ok)
	req.Same(sink, got.(*recordSink))
}
