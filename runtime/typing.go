package runtime

import (
	"time"

	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"
)

// TypingQuietPeriod is the debounce contract value: the client emits
// "typing" once when typing starts (edge-triggered, not per keystroke)
// and schedules a single "stop typing" after this much inactivity,
// rescheduling on every keystroke. The server never enforces it.
const TypingQuietPeriod = 1000 * time.Millisecond

// Typing is a pure relay for ephemeral typing signals. No state, no
// timers, no deduplication: a client that emits "typing" with no matching
// "stop typing" simply leaves a stuck indicator on its peers, which is an
// accepted limitation of the protocol.
type Typing struct {
	rooms contract.IRooms
}

func NewTyping(rooms contract.IRooms) *Typing {
	return &Typing{rooms: rooms}
}

func (t *Typing) Typing(conversationID, userName string, from contract.HandleID) {
	t.rooms.Broadcast(domain.ConversationRoom(conversationID), from,
		event.Typing{ChatID: conversationID, UserName: userName})
}

func (t *Typing) StopTyping(conversationID string, from contract.HandleID) {
	t.rooms.Broadcast(domain.ConversationRoom(conversationID), from,
		event.StopTyping{ChatID: conversationID})
}
