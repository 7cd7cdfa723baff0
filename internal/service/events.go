package service

import "context"

const (
	EventConversationCreated = "conversation:created"
	EventConversationDeleted = "conversation:deleted"
	EventMessageAppended     = "message:new"
)

// Event is a change notification emitted after a successful mutation.
// Recipients are external user ids; the reactive layer fans the event out to
// whichever of them are connected. Queries never emit events.
type Event struct {
	Kind           string   `json:"kind"`
	ConversationID string   `json:"conversation_id"`
	Recipients     []string `json:"recipients"`
	Payload        any      `json:"payload,omitempty"`
}

// Notifier delivers change events. Delivery is best-effort; mutations do not
// fail because a notification could not be sent.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}

// MultiNotifier fans one event out to several sinks (ws hub, redis, kafka).
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, ev Event) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}
