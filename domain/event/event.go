// Package event defines the realtime events exchanged with connected
// clients. Event names are the wire-level names; payloads are the exact
// structures the websocket gateway serializes.
package event

import "chatline/domain"

type DomainEvent interface {
	// EventName is the wire name of the event.
	EventName() string
	// EventPayload is the value serialized under the envelope's payload key.
	EventPayload() any
}

// OnlineSnapshot is sent privately to a freshly established connection.
// The snapshot includes the joining user itself: registration happens
// before the snapshot is taken, which keeps the content deterministic.
type OnlineSnapshot struct {
	UserIDs []string
}

func (e OnlineSnapshot) EventName() string { return "online users" }
func (e OnlineSnapshot) EventPayload() any { return e.UserIDs }

// Connected acknowledges a completed setup to the client.
type Connected struct{}

func (e Connected) EventName() string { return "connected" }
func (e Connected) EventPayload() any { return nil }

type UserOnline struct {
	UserID string
}

func (e UserOnline) EventName() string { return "user online" }
func (e UserOnline) EventPayload() any { return e.UserID }

type UserOffline struct {
	UserID string
}

func (e UserOffline) EventName() string { return "user offline" }
func (e UserOffline) EventPayload() any { return e.UserID }

// MessageReceived carries a resolved message to the members of a
// conversation room.
type MessageReceived struct {
	Message domain.ResolvedMessage
}

func (e MessageReceived) EventName() string { return "message received" }
func (e MessageReceived) EventPayload() any { return e.Message }

// TypingPayload is the ephemeral typing signal. It is never persisted and
// carries no server-side lifetime: the client debounce contract governs
// how long an indicator stays visible.
type TypingPayload struct {
	ChatID   string `json:"chatId"`
	UserName string `json:"userName,omitempty"`
}

type Typing struct {
	ChatID   string
	UserName string
}

func (e Typing) EventName() string { return "typing" }
func (e Typing) EventPayload() any {
	return TypingPayload{ChatID: e.ChatID, UserName: e.UserName}
}

type StopTyping struct {
	ChatID string
}

func (e StopTyping) EventName() string { return "stop typing" }
func (e StopTyping) EventPayload() any { return TypingPayload{ChatID: e.ChatID} }
