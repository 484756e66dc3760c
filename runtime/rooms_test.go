package runtime

import (
	"log/slog"
	"testing"

	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"

	"github.com/stretchr/testify/require"
)

func newTestRooms(t *testing.T) (*Registry, *Rooms) {
	t.Helper()
	registry := NewRegistry()
	return registry, NewRooms(registry, slog.Default())
}

func TestRooms_Broadcast_Excludes_Sender(t *testing.T) {
	req := require.New(t)
	registry, rooms := newTestRooms(t)
	room := domain.RoomID("c1")

	sender := &recordSink{}
	member := &recordSink{}
	outsider := &recordSink{}
	registry.Attach("sender", sender)
	registry.Attach("member", member)
	registry.Attach("outsider", outsider)

	rooms.Join("sender", room)
	rooms.Join("member", room)
	// outsider never joins c1

	rooms.Broadcast(room, "sender", event.StopTyping{ChatID: "c1"})

	// Then only the non-excluded member received it
	req.Empty(sender.all())
	req.Equal([]string{"stop typing"}, member.names())
	req.Empty(outsider.all())
}

func TestRooms_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry, rooms := newTestRooms(t)
	room := domain.RoomID("c1")

	member := &recordSink{}
	registry.Attach("member", member)
	rooms.Join("member", room)
	rooms.Join("member", room)

	rooms.Broadcast(room, "nobody", event.StopTyping{ChatID: "c1"})

	// A double join must not produce a double delivery
	req.Len(member.all(), 1)
}

func TestRooms_Broadcast_Unknown_Room_Is_Noop(t *testing.T) {
	_, rooms := newTestRooms(t)

	// Must not panic or error: stale rooms are a normal condition
	rooms.Broadcast(domain.RoomID("ghost"), "nobody", event.StopTyping{ChatID: "ghost"})
}

func TestRooms_LeaveAll_Removes_From_Every_Room(t *testing.T) {
	req := require.New(t)
	registry, rooms := newTestRooms(t)

	member := &recordSink{}
	other := &recordSink{}
	registry.Attach("member", member)
	registry.Attach("other", other)

	rooms.Join("member", domain.RoomID("c1"))
	rooms.Join("member", domain.RoomID("c2"))
	rooms.Join("other", domain.RoomID("c1"))

	rooms.LeaveAll("member")

	rooms.Broadcast(domain.RoomID("c1"), "nobody", event.StopTyping{ChatID: "c1"})
	rooms.Broadcast(domain.RoomID("c2"), "nobody", event.StopTyping{ChatID: "c2"})

	req.Empty(member.all())
	req.Len(other.all(), 1)
}

func TestRooms_Detached_Member_Is_Skipped(t *testing.T) {
	req := require.New(t)
	registry, rooms := newTestRooms(t)
	room := domain.RoomID("c1")

	member := &recordSink{}
	registry.Attach("member", member)
	rooms.Join("member", room)

	// Sink gone but membership not yet cleaned: broadcast stays silent
	// for that handle instead of failing.
	registry.Detach("member")
	rooms.Broadcast(room, "nobody", event.StopTyping{ChatID: "c1"})

	req.Empty(member.all())
}

var _ contract.EventSink = (*recordSink)(nil)
