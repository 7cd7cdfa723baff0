package service

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/repository"
)

// captureNotifier records every event for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *captureNotifier) Notify(_ context.Context, ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *captureNotifier) byKind(kind string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, ev := range n.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	store         *repository.MemoryStore
	notifier      *captureNotifier
	users         *UserService
	conversations *ConversationService
	messages      *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := repository.NewMemoryStore()
	notifier := &captureNotifier{}
	return &fixture{
		store:         store,
		notifier:      notifier,
		users:         NewUserService(store, log),
		conversations: NewConversationService(store, notifier, log),
		messages:      NewMessageService(store, notifier, log),
	}
}
