// Package combatspell builds CMSG_PET_ACTION (spec §4.9
// GameObject/Emote/Ignore/Trainer/CombatSpell family). Pet action's
// payload is variable-length and command-dependent in the original
// protocol; this module exposes the raw builder plus one typed helper for
// the common pet-guid/command/target shape (spec.md is silent on the exact
// sub-layouts, so the raw form is load-bearing — see DESIGN.md's Open
// Question decision).
package combatspell

import (
	"context"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/wire"
)

type Sender interface {
	Send(ctx context.Context, op opcode.Opcode, body []byte) error
}

type Component struct {
	client Sender
}

func New(client Sender) *Component {
	return &Component{client: client}
}

// PetAction sends CMSG_PET_ACTION with a caller-assembled payload (spec
// §6: "variable").
func (c *Component) PetAction(ctx context.Context, body []byte) error {
	return c.client.Send(ctx, opcode.CMSG_PET_ACTION, body)
}

// PetActionOnTarget is the common shape: pet guid, packed command+action
// word, and a target guid.
func (c *Component) PetActionOnTarget(ctx context.Context, petGUID uint64, command uint32, target uint64) error {
	body := wire.NewWriter().U64(petGUID).U32(command).U64(target).Bytes()
	return c.PetAction(ctx, body)
}
