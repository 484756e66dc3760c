package server

import (
	"encoding/json"
	"time"

	"chatline/contract"
	"chatline/domain"
	"chatline/domain/event"
	"chatline/runtime"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// envelope is the wire frame for realtime events in both directions.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// userRef is the setup payload: the client sends its user object, only
// the id matters here.
type userRef struct {
	ID string `json:"id"`
}

// handleWebSocket owns one connection end to end: it builds the sink and
// the session, starts the writer goroutine and runs the read loop until
// the peer goes away. The read loop ending is the transport-teardown
// trigger for the session.
func (s *Server) handleWebSocket(c *websocket.Conn) {
	handle := contract.HandleID(uuid.NewString())
	sink := newWsSink(s.cfg.ConnectionBufferSize, s.log)
	session := runtime.NewSession(handle, sink,
		s.registry, s.rooms, s.presence, s.typing, s.log)

	go s.writePump(c, sink)
	defer func() {
		session.Disconnect()
		sink.Close()
	}()

	_ = c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	s.log.Debug("Websocket connected", "handle", string(handle))

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Websocket closed by peer", "handle", string(handle))
			} else {
				s.log.Debug("Websocket read failed", "handle", string(handle), "err", err)
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.Debug("Malformed frame ignored", "handle", string(handle), "err", err)
			continue
		}
		s.dispatch(session, env)
	}
}

// dispatch routes one inbound frame to the session. Unknown events and
// undecodable payloads are ignored: a broken client cannot take the
// connection down.
func (s *Server) dispatch(session *runtime.Session, env envelope) {
	switch env.Event {
	case "setup":
		var ref userRef
		if err := json.Unmarshal(env.Payload, &ref); err != nil || ref.ID == "" {
			// Some clients send the bare user id instead of the object.
			var id string
			if err := json.Unmarshal(env.Payload, &id); err != nil {
				return
			}
			ref.ID = id
		}
		session.Setup(ref.ID)
	case "join chat":
		var chatID string
		if err := json.Unmarshal(env.Payload, &chatID); err != nil {
			return
		}
		session.JoinConversation(chatID)
	case "new message":
		var message domain.ResolvedMessage
		if err := json.Unmarshal(env.Payload, &message); err != nil {
			return
		}
		session.RelayMessage(message)
	case "typing":
		if p, ok := decodeTyping(env.Payload); ok {
			session.Typing(p.ChatID, p.UserName)
		}
	case "stop typing":
		if p, ok := decodeTyping(env.Payload); ok {
			session.StopTyping(p.ChatID)
		}
	case "logout":
		session.Logout()
	default:
		s.log.Debug("Unknown event ignored", "event", env.Event)
	}
}

// decodeTyping accepts both the object form and a bare chat id string.
func decodeTyping(raw json.RawMessage) (event.TypingPayload, bool) {
	var p event.TypingPayload
	if err := json.Unmarshal(raw, &p); err == nil && p.ChatID != "" {
		return p, true
	}
	var chatID string
	if err := json.Unmarshal(raw, &chatID); err == nil && chatID != "" {
		return event.TypingPayload{ChatID: chatID}, true
	}
	return event.TypingPayload{}, false
}

// writePump is the single writer of the connection. It serializes events
// from the sink and keeps the peer alive with periodic pings. A write
// failure closes the connection, which unblocks the read loop.
func (s *Server) writePump(c *websocket.Conn, sink *wsSink) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-sink.done:
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.WriteMessage(websocket.CloseMessage, nil)
			return
		case e := <-sink.events:
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteJSON(outEnvelope{Event: e.EventName(), Payload: e.EventPayload()}); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}
