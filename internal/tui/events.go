package tui

import (
	"sync"

	"github.com/finchley/locksmith/internal/event"
)

// eventInbox collects bus events for the model to fold in at the end of
// each Update cycle.
//
// The obvious bridge — a subscriber calling program.Send — would deadlock:
// the coordinator publishes from continuations that run inside Update, and
// Send blocks until the loop reads the message, which it cannot do while
// Update is still on the stack. Every publisher in this process runs on
// the logical thread, so by the time Update returns the inbox already
// holds everything that cycle produced and a synchronous drain loses
// nothing.
type eventInbox struct {
	mu     sync.Mutex
	events []event.Event
}

func newEventInbox() *eventInbox {
	return &eventInbox{}
}

// add is the bus subscriber.
func (in *eventInbox) add(e event.Event) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.events = append(in.events, e)
}

// drain returns the collected events in publish order and empties the
// inbox.
func (in *eventInbox) drain() []event.Event {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.events
	in.events = nil
	return out
}
