// Package stream provides the reference-counted multicast primitive used
// for every component "update stream" in this module (bind point updates,
// friend status changes, inventory errors, …). It is the explicit
// ref-counted wrapper design note §9 calls for: the underlying resource
// conceptually starts on first subscriber and tears down when the last
// subscriber leaves, without relying on any hidden Subject/RefCount magic.
package stream

import "sync"

// Broadcaster fans out values of type T to any number of subscribers.
// Each subscriber gets its own buffered channel; a slow subscriber never
// blocks Emit (the send is non-blocking and drops the value on a full
// channel) since component update streams, unlike router opcode streams,
// are best-effort — the authoritative value always lives in the
// component's cache (spec §3 invariant 3).
type Broadcaster[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan T
	closed bool
}

const defaultBufferSize = 16

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[int]chan T)}
}

// Subscribe returns a receive channel and an unsubscribe func. Calling
// unsubscribe is always immediate and safe to call more than once.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, defaultBufferSize)
	id := b.nextID
	b.nextID++
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
			b.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// Emit pushes v to every current subscriber. Non-blocking per subscriber.
func (b *Broadcaster[T]) Emit(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// SubscriberCount reports the current number of live subscribers.
func (b *Broadcaster[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close completes every owned channel and rejects future Subscribe/Emit
// calls. Idempotent. Called by a component's disposer (spec §4.8, §3
// Lifecycle: "dispose completes all streams they own").
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
