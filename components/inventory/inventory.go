// Package inventory builds the bag-manipulation CMSG opcodes and decodes
// SMSG_INVENTORY_CHANGE_FAILURE into a user-visible message (spec §4.9
// Inventory).
package inventory

import (
	"context"
	"fmt"
	"log"

	"github.com/mangosgo/wowcore/internal/component"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/wire"
)

// Result codes carried by INVENTORY_CHANGE_FAILURE's first byte. 0 is a
// success sentinel and is suppressed (spec §4.9).
const (
	ResultOK                 = 0
	ResultBagFull             = 3
	ResultCantEquipLevelI     = 18
	ResultNotEnoughMoney      = 31
)

var resultMessages = map[uint8]string{
	ResultBagFull:         "Inventory is full",
	ResultCantEquipLevelI: "You must reach level %d to use that item",
	ResultNotEnoughMoney:  "Not enough money",
}

// Sender is the narrow send surface the builders need.
type Sender interface {
	Send(ctx context.Context, op opcode.Opcode, body []byte) error
}

type clientIface interface {
	component.OpcodeSource
	Sender
}

// Component builds outbound inventory ops and decodes failure notices.
type Component struct {
	core   *component.Core
	client clientIface

	errorUpdates *stream.Broadcaster[string]
}

func New(client clientIface) *Component {
	c := &Component{
		core:         component.NewCore(),
		client:       client,
		errorUpdates: stream.NewBroadcaster[string](),
	}
	c.core.Subscribe(client, opcode.SMSG_INVENTORY_CHANGE_FAILURE, c.parseChangeFailure)
	return c
}

func (c *Component) parseChangeFailure(body []byte) {
	r := wire.NewReader(body)
	code, err := r.U8()
	if err != nil {
		log.Printf("inventory: truncated INVENTORY_CHANGE_FAILURE, dropping packet")
		return
	}
	if code == ResultOK {
		return // success sentinel, not an error (spec §4.9)
	}

	var requiredLevel uint32
	if code == ResultCantEquipLevelI {
		lvl, err := r.U32()
		if err != nil {
			log.Printf("inventory: truncated CantEquipLevelI extras, dropping packet")
			return
		}
		requiredLevel = lvl
	}
	// Up to two 8-byte item GUIDs may follow if bytes remain; consumed but
	// not surfaced in the user-visible message.
	for i := 0; i < 2 && r.Remaining() >= 8; i++ {
		_, _ = r.U64()
	}

	msg, ok := resultMessages[code]
	if !ok {
		msg = "Inventory action failed"
	}
	if code == ResultCantEquipLevelI {
		msg = fmt.Sprintf(msg, requiredLevel)
	}
	c.errorUpdates.Emit(msg)
}

func (c *Component) ErrorUpdates() (<-chan string, func()) { return c.errorUpdates.Subscribe() }

// SwapItem sends CMSG_SWAP_ITEM (4 bytes).
func (c *Component) SwapItem(ctx context.Context, dstBag, dstSlot, srcBag, srcSlot uint8) error {
	body := wire.NewWriter().U8(dstBag).U8(dstSlot).U8(srcBag).U8(srcSlot).Bytes()
	return c.client.Send(ctx, opcode.CMSG_SWAP_ITEM, body)
}

// SplitItem sends CMSG_SPLIT_ITEM (5 bytes); count is clamped to 255.
func (c *Component) SplitItem(ctx context.Context, srcBag, srcSlot, dstBag, dstSlot uint8, count int) error {
	if count > 255 {
		count = 255
	}
	if count < 0 {
		count = 0
	}
	body := wire.NewWriter().U8(srcBag).U8(srcSlot).U8(dstBag).U8(dstSlot).U8(uint8(count)).Bytes()
	return c.client.Send(ctx, opcode.CMSG_SPLIT_ITEM, body)
}

// DestroyItem sends CMSG_DESTROYITEM (6 bytes: bag, slot, count, 3 reserved zero bytes).
func (c *Component) DestroyItem(ctx context.Context, bag, slot, count uint8) error {
	body := wire.NewWriter().U8(bag).U8(slot).U8(count).U8(0).U8(0).U8(0).Bytes()
	return c.client.Send(ctx, opcode.CMSG_DESTROYITEM, body)
}

// AutoStoreBagItem sends CMSG_AUTOSTORE_BAG_ITEM (3 bytes).
func (c *Component) AutoStoreBagItem(ctx context.Context, bag, slot, dstBag uint8) error {
	body := wire.NewWriter().U8(bag).U8(slot).U8(dstBag).Bytes()
	return c.client.Send(ctx, opcode.CMSG_AUTOSTORE_BAG_ITEM, body)
}

func (c *Component) Dispose() {
	c.core.Dispose(c.errorUpdates.Close)
}
