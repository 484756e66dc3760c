package runtime

import (
	"log/slog"

	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"
)

type SessionState int

const (
	// StateConnected: transport handshake done, no identity yet.
	StateConnected SessionState = iota
	// StateEstablished: setup received, presence registered, implicit
	// user room joined.
	StateEstablished
	// StateTerminated: teardown ran. Absorbing: every further event on
	// this session is ignored.
	StateTerminated
)

// Session is the state machine of one connection, from handshake to
// teardown. It owns the cleanup of registry and room entries on every
// exit path. A session is driven by its connection's single reader
// goroutine, so events are processed in arrival order and the state
// field needs no lock; the tables it mutates carry their own.
type Session struct {
	handle   contract.HandleID
	userID   string
	state    SessionState
	sink     contract.EventSink
	registry contract.IRegistry
	rooms    contract.IRooms
	presence *Presence
	typing   *Typing
	log      *slog.Logger
}

func NewSession(handle contract.HandleID, sink contract.EventSink,
	registry contract.IRegistry, rooms contract.IRooms,
	presence *Presence, typing *Typing, log *slog.Logger) *Session {
	registry.Attach(handle, sink)
	return &Session{
		handle:   handle,
		sink:     sink,
		registry: registry,
		rooms:    rooms,
		presence: presence,
		typing:   typing,
		log:      log,
	}
}

func (s *Session) Handle() contract.HandleID { return s.handle }
func (s *Session) State() SessionState       { return s.state }

// Setup moves Connected -> Established: register presence (superseding
// any prior connection for the same user) and join the implicit per-user
// room used for targeted delivery. A duplicate setup is a no-op.
func (s *Session) Setup(userID string) {
	if s.state != StateConnected || userID == "" {
		return
	}
	s.userID = userID
	s.presence.Connected(userID, s.handle, s.sink)
	s.rooms.Join(s.handle, domain.UserRoom(userID))
	s.state = StateEstablished
	s.log.Debug("Session established", "user_id", userID, "handle", string(s.handle))
}

// JoinConversation subscribes the connection to a conversation room.
func (s *Session) JoinConversation(conversationID string) {
	if s.state != StateEstablished || conversationID == "" {
		return
	}
	s.rooms.Join(s.handle, domain.ConversationRoom(conversationID))
}

// RelayMessage fans a sender-resolved message out to the conversation
// room, excluding the sender. This is the client-initiated re-broadcast
// leg of the two-path send: the message was already persisted over HTTP.
// A payload without a conversation or participants is dropped silently.
func (s *Session) RelayMessage(message domain.ResolvedMessage) {
	if s.state != StateEstablished {
		return
	}
	if message.Chat.ID == "" || len(message.Chat.Users) == 0 {
		return
	}
	s.rooms.Broadcast(domain.ConversationRoom(message.Chat.ID), s.handle,
		event.MessageReceived{Message: message})
}

func (s *Session) Typing(conversationID, userName string) {
	if s.state != StateEstablished {
		return
	}
	s.typing.Typing(conversationID, userName, s.handle)
}

func (s *Session) StopTyping(conversationID string) {
	if s.state != StateEstablished {
		return
	}
	s.typing.StopTyping(conversationID, s.handle)
}

// Logout is the client-initiated exit path. The connection is expected to
// close or go idle afterwards; either way the session accepts nothing
// more.
func (s *Session) Logout() {
	s.teardown()
}

// Disconnect is the transport-initiated exit path, triggered by the read
// loop ending. Safe to call after Logout already ran.
func (s *Session) Disconnect() {
	s.teardown()
}

// teardown runs the cleanup exactly once: presence offline (guarded by
// handle comparison, so a superseded connection never broadcasts a false
// offline), then room and sink removal.
func (s *Session) teardown() {
	if s.state == StateTerminated {
		return
	}
	s.state = StateTerminated

	if s.userID != "" {
		s.presence.Disconnected(s.userID, s.handle)
	}
	s.rooms.LeaveAll(s.handle)
	s.registry.Detach(s.handle)
	s.log.Debug("Session terminated", "user_id", s.userID, "handle", string(s.handle))
}
