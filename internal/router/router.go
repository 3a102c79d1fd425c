// Package router implements the opcode fan-out described in spec §4.5: a
// lazy per-opcode subscription registry that guarantees FIFO delivery
// within an opcode, sheds the oldest backlog entries under backpressure,
// and never blocks the read loop on a slow subscriber.
//
// Grounded on internal/lb.go's mutex-guarded-struct-plus-pool shape
// (upstreamState behind a short lock, read-mostly pool snapshotted under
// lock then walked unlocked) and the ref-counted multicast design note in
// spec §9 — slot's subscribers map (counted by slot.count) is exactly that
// ref-counted wrapper.
package router

import (
	"context"
	"log"
	"sync"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/telemetry"
)

// DefaultBacklogLimit is the default bound on a subscriber's undelivered
// queue before the oldest entries are shed (spec §4.5).
const DefaultBacklogLimit = 1024

// subscriber is one delivery queue. Push is always non-blocking: on
// overflow it evicts the oldest buffered packet and increments Dropped.
type subscriber struct {
	mu      sync.Mutex
	buf     [][]byte
	notify  chan struct{}
	closed  bool
	dropped uint64
	limit   int
}

func newSubscriber(limit int) *subscriber {
	return &subscriber{notify: make(chan struct{}, 1), limit: limit}
}

func (s *subscriber) push(body []byte) (dropped bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if len(s.buf) >= s.limit {
		s.buf = s.buf[1:]
		s.dropped++
		dropped = true
	}
	s.buf = append(s.buf, body)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return dropped
}

// recv blocks until a packet is available, the subscriber is closed, or
// ctx is cancelled.
func (s *subscriber) recv(ctx context.Context) ([]byte, bool, error) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			b := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return b, true, nil
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return nil, false, nil
		}

		select {
		case <-s.notify:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// close marks the subscriber closed and discards any buffered-but-undelivered
// packets (spec §4.5 cancellation: "buffered but undelivered packets are
// discarded"). Safe to call more than once.
func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.buf = nil
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) droppedCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// slot is the per-opcode SubscriptionSlot (spec §3). Once created it is
// retained for the lifetime of the router, even after every subscriber
// has unsubscribed, so a future RegisterOpcodeStream call reuses it.
type slot struct {
	mu          sync.Mutex
	subscribers map[int]*subscriber
	nextID      int
	backlog     int
}

func newSlot(backlog int) *slot {
	return &slot{subscribers: make(map[int]*subscriber), backlog: backlog}
}

func (sl *slot) add() (*subscriber, int) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sub := newSubscriber(sl.backlog)
	id := sl.nextID
	sl.nextID++
	sl.subscribers[id] = sub
	return sub, id
}

func (sl *slot) remove(id int) {
	sl.mu.Lock()
	sub, ok := sl.subscribers[id]
	if ok {
		delete(sl.subscribers, id)
	}
	sl.mu.Unlock()
	if ok {
		sub.close()
	}
}

func (sl *slot) count() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return len(sl.subscribers)
}

func (sl *slot) snapshot() []*subscriber {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	out := make([]*subscriber, 0, len(sl.subscribers))
	for _, sub := range sl.subscribers {
		out = append(out, sub)
	}
	return out
}

// Subscription is a handle returned by RegisterOpcodeStream. Recv yields
// bodies in the exact order the read loop dispatched them; dropping the
// handle (calling Close) is always immediate.
type Subscription struct {
	op  opcode.Opcode
	sub *subscriber
	sl  *slot
	id  int

	closeOnce sync.Once
}

func (s *Subscription) Recv(ctx context.Context) ([]byte, bool, error) {
	return s.sub.recv(ctx)
}

// Dropped returns how many packets have been shed from this subscriber's
// backlog due to falling behind.
func (s *Subscription) Dropped() uint64 { return s.sub.droppedCount() }

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.sl.remove(s.id)
	})
}

// Router is the multi-subscriber opcode fan-out at the heart of the
// client (spec §4.5).
type Router struct {
	mu    sync.Mutex
	slots map[opcode.Opcode]*slot

	unhandledMu     sync.Mutex
	unhandledLogged map[opcode.Opcode]bool

	backlogLimit int

	tapMu sync.RWMutex
	tap   func(op opcode.Opcode, body []byte)
}

func New() *Router {
	return &Router{
		slots:           make(map[opcode.Opcode]*slot),
		unhandledLogged: make(map[opcode.Opcode]bool),
		backlogLimit:    DefaultBacklogLimit,
	}
}

// WithBacklogLimit overrides the default per-subscriber backlog bound.
func (r *Router) WithBacklogLimit(limit int) *Router {
	if limit > 0 {
		r.backlogLimit = limit
	}
	return r
}

// RegisterOpcodeStream is idempotent per opcode: repeated calls for the
// same opcode hand back independent subscriptions backed by the same
// slot — each subscriber receives every subsequent packet, but already
// delivered packets are never replayed to a late joiner.
func (r *Router) RegisterOpcodeStream(op opcode.Opcode) *Subscription {
	r.mu.Lock()
	sl, ok := r.slots[op]
	if !ok {
		sl = newSlot(r.backlogLimit)
		r.slots[op] = sl
	}
	r.mu.Unlock()

	sub, id := sl.add()
	return &Subscription{op: op, sub: sub, sl: sl, id: id}
}

// SetTap installs a callback invoked for every Dispatch call, regardless
// of whether op has any subscribers — the observational hook the debug
// tap server attaches to (SPEC_FULL §4.11). Passing nil detaches it. The
// tap never affects fan-out ordering or backpressure: it is called
// synchronously but must not block or panic.
func (r *Router) SetTap(fn func(op opcode.Opcode, body []byte)) {
	r.tapMu.Lock()
	defer r.tapMu.Unlock()
	r.tap = fn
}

// Dispatch delivers body to every current subscriber of op, in the order
// Dispatch is called (spec §4.5 ordering guarantee). If no slot exists for
// op, the body is dropped and an "unhandled opcode" diagnostic is logged
// once per opcode per session (spec §4.9 Failure semantics).
func (r *Router) Dispatch(op opcode.Opcode, body []byte) {
	r.tapMu.RLock()
	tap := r.tap
	r.tapMu.RUnlock()
	if tap != nil {
		tap(op, body)
	}

	r.mu.Lock()
	sl, ok := r.slots[op]
	r.mu.Unlock()

	if !ok {
		r.logUnhandledOnce(op)
		telemetry.IncUnhandled(op.Name)
		return
	}

	telemetry.IncDispatched(op.Name)
	for _, sub := range sl.snapshot() {
		if sub.push(body) {
			telemetry.IncDropped(op.Name)
		}
	}
}

func (r *Router) logUnhandledOnce(op opcode.Opcode) {
	r.unhandledMu.Lock()
	defer r.unhandledMu.Unlock()
	if r.unhandledLogged[op] {
		return
	}
	r.unhandledLogged[op] = true
	log.Printf("router: unhandled opcode %s (0x%04X)", op.Name, op.ID)
}

// SubscriberCount reports how many live subscribers a slot has, or 0 if
// the opcode has never been registered.
func (r *Router) SubscriberCount(op opcode.Opcode) int {
	r.mu.Lock()
	sl, ok := r.slots[op]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	return sl.count()
}
