package janua

import "sync"

// Event identifies an auth-state transition a client broadcasts to
// subscribers. The set is fixed; there is no string-keyed event bus.
type Event string

const (
	// EventSignedIn fires when a sign-in or code exchange stores tokens.
	EventSignedIn Event = "signedIn"

	// EventSignedOut fires when tokens are cleared: explicit logout or a
	// failed refresh.
	EventSignedOut Event = "signedOut"

	// EventTokenRefreshed fires after a successful token refresh.
	EventTokenRefreshed Event = "tokenRefreshed"
)

type eventBus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[Event]map[int]func()
}

func newEventBus() *eventBus {
	return &eventBus{handlers: make(map[Event]map[int]func())}
}

// subscribe registers fn for event and returns an unsubscribe func.
// Unsubscribing twice is harmless.
func (b *eventBus) subscribe(event Event, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[event] == nil {
		b.handlers[event] = make(map[int]func())
	}
	id := b.nextID
	b.nextID++
	b.handlers[event][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[event], id)
	}
}

// emit invokes every handler registered for event. Handlers run outside
// the bus lock so they may subscribe or unsubscribe freely.
func (b *eventBus) emit(event Event) {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.handlers[event]))
	for _, fn := range b.handlers[event] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// reset drops every subscription.
func (b *eventBus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[Event]map[int]func())
}
