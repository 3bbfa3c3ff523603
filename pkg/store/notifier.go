package store

import "sync"

// Listener is called after a store mutation. It carries no payload;
// listeners re-read whatever state they need.
type Listener func()

type subscription struct {
	id int
	fn Listener
}

// notifier is embedded by every store to provide Subscribe.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners []subscription
}

// Subscribe registers fn and returns a function that removes it.
// Listeners run synchronously, in registration order, after the mutating
// call has released the store lock.
func (n *notifier) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, subscription{id: id, fn: fn})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *notifier) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.listeners {
		if s.id == id {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return
		}
	}
}

func (n *notifier) notify() {
	n.mu.Lock()
	snapshot := make([]subscription, len(n.listeners))
	copy(snapshot, n.listeners)
	n.mu.Unlock()
	for _, s := range snapshot {
		s.fn()
	}
}
