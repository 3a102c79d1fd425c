// Package targeting tracks the local current-target cache and builds
// CMSG_SET_SELECTION (spec §4.9 Targeting). Stateless beyond the single
// current-target slot.
package targeting

import (
	"context"
	"sync"
	"time"

	"github.com/mangosgo/wowcore/internal/component"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/wire"
)

// assistTickDuration is the short cooperative wait Assist gives the
// server to swap the effective target (spec §4.9: "~100 ms").
const assistTickDuration = 100 * time.Millisecond

// ChangeRecord is emitted every time the current target changes.
type ChangeRecord struct {
	Previous  uint64
	Current   uint64
	Timestamp time.Time
}

type Sender interface {
	Send(ctx context.Context, op opcode.Opcode, body []byte) error
}

type clientIface interface {
	component.OpcodeSource
	Sender
}

type Component struct {
	core   *component.Core
	client clientIface

	mu      sync.Mutex
	current uint64

	changeUpdates *stream.Broadcaster[ChangeRecord]
}

func New(client clientIface) *Component {
	return &Component{
		core:          component.NewCore(),
		client:        client,
		changeUpdates: stream.NewBroadcaster[ChangeRecord](),
	}
}

func (c *Component) Current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SetSelection optimistically updates the local cache, then sends
// CMSG_SET_SELECTION (spec §4.9: "optimistically updates local
// current-target cache").
func (c *Component) SetSelection(ctx context.Context, guid uint64) error {
	c.mu.Lock()
	previous := c.current
	c.current = guid
	c.mu.Unlock()

	c.changeUpdates.Emit(ChangeRecord{Previous: previous, Current: guid, Timestamp: time.Now()})

	body := wire.NewWriter().U64(guid).Bytes()
	return c.client.Send(ctx, opcode.CMSG_SET_SELECTION, body)
}

// Assist sets the target to guid, then waits one short cooperative tick
// to let the server swap the effective target server-side (spec §4.9).
func (c *Component) Assist(ctx context.Context, guid uint64) error {
	if err := c.SetSelection(ctx, guid); err != nil {
		return err
	}
	select {
	case <-time.After(assistTickDuration):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (c *Component) ChangeUpdates() (<-chan ChangeRecord, func()) {
	return c.changeUpdates.Subscribe()
}

func (c *Component) Dispose() {
	c.core.Dispose(c.changeUpdates.Close)
}
