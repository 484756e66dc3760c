//go:generate mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chatline/domain"
	"chatline/domain/event"
	"context"
	"reflect"
)

// EventSink is the delivery endpoint of one live connection. Consume must
// not block: a slow or dead receiver is the sink's problem, never the
// broadcaster's.
type EventSink interface {
	Consume(e event.DomainEvent)
}

// HandleID is the opaque transport-level identifier of a connection.
type HandleID string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry is the authoritative user -> connection mapping, plus the
// handle -> sink table every broadcast resolves through. Attach/Detach
// track raw connections (a connection exists before it has an identity);
// Register/UnregisterIfCurrent track authenticated presence.
type IRegistry interface {
	Attach(handle HandleID, sink EventSink)
	Detach(handle HandleID)
	Register(userID string, handle HandleID)
	UnregisterIfCurrent(userID string, handle HandleID) bool
	IsOnline(userID string) bool
	OnlineUserIDs() []string
	SinkFor(handle HandleID) (EventSink, bool)
	AllSinks(exclude HandleID) []EventSink
}

// IRooms is the conversation- and user-scoped broadcast router.
type IRooms interface {
	Join(handle HandleID, roomID domain.RoomID)
	LeaveAll(handle HandleID)
	Broadcast(roomID domain.RoomID, exclude HandleID, e event.DomainEvent)
}
