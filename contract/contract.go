//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"social-chat/domain/chat"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

type ConnectionID string

// EventSink receives the notifications routed to it.
// Consume must honour the context deadline.
type EventSink interface {
	Consume(ctx context.Context, n chat.Notification) error
}

// Connection is one live transport session.
type Connection interface {
	EventSink
	ID() ConnectionID
}

type IRegistry interface {
	Bind(conn Connection, userID chat.UserID) error
	Unbind(connID ConnectionID)
	Subscribe(connID ConnectionID, channel chat.ChannelID) error
	SubscribeUser(userID chat.UserID, channel chat.ChannelID) int
	Publish(ctx context.Context, channel chat.ChannelID, n chat.Notification) int
	IsOnline(userID chat.UserID) bool
	Connections() int
}

// Job is one inbound real-time action together with the connection it arrived on.
type Job struct {
	Conn   Connection
	UserID chat.UserID
	Action chat.Action
}

type IActionHandler interface {
	Handle(ctx context.Context, job Job)
}
