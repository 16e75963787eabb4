package store

import "sync"

// Feed is an in-process insert notification feed. Handlers run
// synchronously on the publishing goroutine; subscribers decide their own
// concurrency model. Cancel removes the handler from future publishes,
// but a publish that already snapshotted its handler set may still invoke
// the handler once after cancel returns; subscribers that need a hard
// stop keep their own closed flag.
type Feed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(InsertEvent)
}

// NewFeed constructs an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]func(InsertEvent))}
}

// Subscribe registers a handler for insert events and returns its cancel
// function.
func (f *Feed) Subscribe(handler func(InsertEvent)) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = handler
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Publish notifies all current subscribers.
func (f *Feed) Publish(ev InsertEvent) {
	f.mu.Lock()
	handlers := make([]func(InsertEvent), 0, len(f.subs))
	for _, h := range f.subs {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (f *Feed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
