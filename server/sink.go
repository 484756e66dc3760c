package server

import (
	"log/slog"
	"sync"

	"chatline/domain/event"
)

// wsSink buffers outbound events for one websocket connection. Consume
// never blocks: when the buffer is full the event is dropped and counted,
// keeping one slow client from stalling a broadcast.
type wsSink struct {
	events chan event.DomainEvent
	done   chan struct{}
	once   sync.Once
	log    *slog.Logger
}

func newWsSink(bufferSize int, log *slog.Logger) *wsSink {
	return &wsSink{
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
		log:    log,
	}
}

// Consume is called by the broadcast paths.
// Redirect the event through the connection's channel; the writer
// goroutine takes it from there. A broadcast may still hold this sink
// briefly after teardown, so a closed sink swallows instead of panicking.
func (s *wsSink) Consume(e event.DomainEvent) {
	select {
	case <-s.done:
	case s.events <- e:
	default:
		s.log.Warn("Backpressure: event dropped", "event", e.EventName())
	}
}

// Close releases the writer goroutine. Idempotent.
func (s *wsSink) Close() {
	s.once.Do(func() { close(s.done) })
}
