// Package gameobject builds CMSG_GAMEOBJ_USE (spec §4.9
// GameObject/Emote/Ignore/Trainer/CombatSpell family). The handled opcode
// set (spec §6) has no inbound game-object-specific SMSG; real-time
// object state arrives on the generic object-update stream, which spec.md
// §2 places out of scope for this module. OnEvent is the seam a future
// object-update pipeline would call through, decided per the Open
// Question on placeholder components (see DESIGN.md).
package gameobject

import (
	"context"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/wire"
)

type Sender interface {
	Send(ctx context.Context, op opcode.Opcode, body []byte) error
}

// Event is a raw, not-yet-typed notification handed in from outside this
// module's scope (e.g. an object-update pipeline this repo does not own).
type Event struct {
	GUID uint64
	Kind string
}

type Component struct {
	client       Sender
	eventUpdates *stream.Broadcaster[Event]
}

func New(client Sender) *Component {
	return &Component{client: client, eventUpdates: stream.NewBroadcaster[Event]()}
}

// Use sends CMSG_GAMEOBJ_USE (8-byte GUID).
func (c *Component) Use(ctx context.Context, guid uint64) error {
	return c.client.Send(ctx, opcode.CMSG_GAMEOBJ_USE, wire.NewWriter().U64(guid).Bytes())
}

// OnEvent re-publishes an externally-sourced game object event on this
// component's stream, so subscribers have one place to listen regardless
// of where object updates ultimately come from.
func (c *Component) OnEvent(e Event) {
	c.eventUpdates.Emit(e)
}

func (c *Component) EventUpdates() (<-chan Event, func()) { return c.eventUpdates.Subscribe() }

func (c *Component) Dispose() {
	c.eventUpdates.Close()
}
