// Package component provides Core (the ComponentCore), the uniform substrate every
// domain component (CharacterInit, Targeting, Inventory, …) is built on
// (spec §4.8). Grounded on the background-ticking lifecycle shape in the
// teacher's internal/warm_standby.go (a value owning its own cancellable
// goroutine(s) plus a sync.Once-guarded stop), generalized here to own
// router subscriptions instead of a standby-refresh ticker.
package component

import (
	"context"
	"sync"
	"time"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/router"
)

// OpcodeSource is the narrow slice of WorldClient every component needs
// to subscribe itself — see client.WorldClient, which satisfies it.
type OpcodeSource interface {
	RegisterOpcodeStream(op opcode.Opcode) *router.Subscription
}

// Core is the ComponentState of spec §3: in-progress flag, last-op
// timestamp, and subscription bookkeeping, shared by every component via
// composition rather than inheritance (spec §9 design note).
type Core struct {
	mu         sync.Mutex
	inProgress bool
	lastOpTime time.Time
	subs       []*router.Subscription

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	disposeOnce sync.Once
}

func NewCore() *Core {
	ctx, cancel := context.WithCancel(context.Background())
	return &Core{ctx: ctx, cancel: cancel}
}

// SetOpInProgress updates the in-progress flag, stamping LastOpTime on the
// false→true transition (spec §4.8).
func (c *Core) SetOpInProgress(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v && !c.inProgress {
		c.lastOpTime = time.Now()
	}
	c.inProgress = v
}

func (c *Core) IsOpInProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inProgress
}

func (c *Core) LastOpTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOpTime
}

// Subscribe registers an opcode stream and routes each payload through
// parse on its own goroutine, until Dispose is called or the subscription
// otherwise ends.
func (c *Core) Subscribe(client OpcodeSource, op opcode.Opcode, parse func(body []byte)) {
	sub := client.RegisterOpcodeStream(op)

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			body, ok, err := sub.Recv(c.ctx)
			if err != nil || !ok {
				return
			}
			parse(body)
		}
	}()
}

// Dispose completes all owned subscriptions (spec §3 Lifecycle), then runs
// any component-owned finalizers (typically each update-stream
// Broadcaster's Close), in that order so no late emission can race a
// subscriber that already saw the stream complete. Idempotent.
func (c *Core) Dispose(finalizers ...func()) {
	c.disposeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		subs := c.subs
		c.subs = nil
		c.mu.Unlock()

		for _, s := range subs {
			s.Close()
		}
		c.wg.Wait()

		for _, fn := range finalizers {
			fn()
		}
	})
}
