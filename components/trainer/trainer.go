// Package trainer decodes SMSG_TRAINER_LIST / SMSG_TRAINER_BUY_SUCCEEDED /
// SMSG_TRAINER_BUY_FAILED and builds the trainer CMSG opcodes (spec §4.9
// GameObject/Emote/Ignore/Trainer family).
package trainer

import (
	"context"
	"log"
	"sync"

	"github.com/mangosgo/wowcore/internal/component"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/wire"
)

// Spell is one decoded trainer offering.
type Spell struct {
	Index   uint32
	SpellID uint32
	Cost    uint32
}

// BuyOutcome is emitted for both success and failure of a spell purchase.
type BuyOutcome struct {
	Success   bool
	SpellID   uint32
	Cost      uint32
	ErrorCode uint32
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

	mu     sync.Mutex
	guid   uint64
	spells []Spell

	listUpdates *stream.Broadcaster[[]Spell]
	buyUpdates  *stream.Broadcaster[BuyOutcome]
}

func New(client clientIface) *Component {
	c := &Component{
		core:        component.NewCore(),
		client:      client,
		listUpdates: stream.NewBroadcaster[[]Spell](),
		buyUpdates:  stream.NewBroadcaster[BuyOutcome](),
	}
	c.core.Subscribe(client, opcode.SMSG_TRAINER_LIST, c.parseTrainerList)
	c.core.Subscribe(client, opcode.SMSG_TRAINER_BUY_SUCCEEDED, c.parseBuySucceeded)
	c.core.Subscribe(client, opcode.SMSG_TRAINER_BUY_FAILED, c.parseBuyFailed)
	return c
}

func (c *Component) parseTrainerList(body []byte) {
	r := wire.NewReader(body)
	guid, err := r.U64()
	if err != nil {
		log.Printf("trainer: truncated TRAINER_LIST, dropping packet")
		return
	}
	count, err := r.U32()
	if err != nil {
		log.Printf("trainer: truncated TRAINER_LIST, dropping packet")
		return
	}

	spells := make([]Spell, 0, count)
	for i := uint32(0); i < count; i++ {
		index, err1 := r.U32()
		spellID, err2 := r.U32()
		cost, err3 := r.U32()
		if err1 != nil || err2 != nil || err3 != nil {
			log.Printf("trainer: truncated TRAINER_LIST entry %d, dropping packet", i)
			return
		}
		spells = append(spells, Spell{Index: index, SpellID: spellID, Cost: cost})
	}

	c.mu.Lock()
	c.guid = guid
	c.spells = spells
	c.mu.Unlock()
	c.listUpdates.Emit(spells)
}

func (c *Component) parseBuySucceeded(body []byte) {
	r := wire.NewReader(body)
	spellID, err1 := r.U32()
	cost, err2 := r.U32()
	if err1 != nil || err2 != nil {
		log.Printf("trainer: truncated TRAINER_BUY_SUCCEEDED, dropping packet")
		return
	}
	c.buyUpdates.Emit(BuyOutcome{Success: true, SpellID: spellID, Cost: cost})
}

func (c *Component) parseBuyFailed(body []byte) {
	r := wire.NewReader(body)
	code, err := r.U32()
	if err != nil {
		log.Printf("trainer: truncated TRAINER_BUY_FAILED, dropping packet")
		return
	}
	c.buyUpdates.Emit(BuyOutcome{Success: false, ErrorCode: code})
}

func (c *Component) Spells() []Spell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Spell(nil), c.spells...)
}

func (c *Component) ListUpdates() (<-chan []Spell, func()) { return c.listUpdates.Subscribe() }
func (c *Component) BuyUpdates() (<-chan BuyOutcome, func()) { return c.buyUpdates.Subscribe() }

// RequestList sends CMSG_TRAINER_LIST (8 bytes: guid).
func (c *Component) RequestList(ctx context.Context, guid uint64) error {
	return c.client.Send(ctx, opcode.CMSG_TRAINER_LIST, wire.NewWriter().U64(guid).Bytes())
}

// BuySpell sends CMSG_TRAINER_BUY_SPELL (12 bytes: guid, spell_id).
func (c *Component) BuySpell(ctx context.Context, guid uint64, spellID uint32) error {
	body := wire.NewWriter().U64(guid).U32(spellID).Bytes()
	return c.client.Send(ctx, opcode.CMSG_TRAINER_BUY_SPELL, body)
}

func (c *Component) Dispose() {
	c.core.Dispose(c.listUpdates.Close, c.buyUpdates.Close)
}
