package runtime

import (
	"log/slog"

	"chatline/contract"
	"chatline/domain/event"
)

// Presence translates registry transitions into the online/offline
// notifications clients see. The supersede-before-teardown race is
// resolved entirely by handle comparison in the registry: a stale
// disconnect produces no transition and therefore no false offline
// notice.
type Presence struct {
	registry contract.IRegistry
	log      *slog.Logger
}

func NewPresence(registry contract.IRegistry, log *slog.Logger) *Presence {
	return &Presence{registry: registry, log: log}
}

// Connected performs the Offline -> Online transition: register the
// mapping (silently superseding any prior one), hand the new connection
// its snapshot of online users, then tell everyone else. The snapshot is
// taken after registration, so it deterministically includes the joining
// user.
func (p *Presence) Connected(userID string, handle contract.HandleID, sink contract.EventSink) {
	p.registry.Register(userID, handle)

	sink.Consume(event.OnlineSnapshot{UserIDs: p.registry.OnlineUserIDs()})

	for _, other := range p.registry.AllSinks(handle) {
		other.Consume(event.UserOnline{UserID: userID})
	}

	sink.Consume(event.Connected{})
	p.log.Debug("User online", "user_id", userID)
}

// Disconnected performs the Online -> Offline transition, but only when
// the given handle is still the user's current one. It reports whether
// the transition fired.
func (p *Presence) Disconnected(userID string, handle contract.HandleID) bool {
	if !p.registry.UnregisterIfCurrent(userID, handle) {
		// The user reconnected before this teardown ran; the newer
		// connection owns the presence entry now.
		return false
	}

	for _, other := range p.registry.AllSinks(handle) {
		other.Consume(event.UserOffline{UserID: userID})
	}
	p.log.Debug("User offline", "user_id", userID)
	return true
}
