// Package emote builds CMSG_EMOTE and CMSG_TEXT_EMOTE (spec §4.9
// GameObject/Emote/Ignore/Trainer/CombatSpell family). There is no
// dedicated inbound emote opcode in the handled set (spec §6); emote
// playback on other players arrives via the generic object-update stream,
// which is out of this module's scope (spec §2 Non-goals), so this
// component is outbound-only.
package emote

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

// Emote sends CMSG_EMOTE (4 bytes: emote id).
func (c *Component) Emote(ctx context.Context, emoteID uint32) error {
	return c.client.Send(ctx, opcode.CMSG_EMOTE, wire.NewWriter().U32(emoteID).Bytes())
}

// TextEmote sends CMSG_TEXT_EMOTE (12 bytes: text_emote id, target guid).
func (c *Component) TextEmote(ctx context.Context, textEmoteID uint32, target uint64) error {
	body := wire.NewWriter().U32(textEmoteID).U64(target).Bytes()
	return c.client.Send(ctx, opcode.CMSG_TEXT_EMOTE, body)
}
