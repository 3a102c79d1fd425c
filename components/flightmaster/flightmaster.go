// Package flightmaster decodes SMSG_SHOWTAXINODES, SMSG_ACTIVATETAXIREPLY,
// SMSG_TAXINODE_STATUS, and builds the taxi-related CMSG opcodes (spec
// §4.9 FlightMaster). The taxi map's close has no dedicated opcode; the
// fallback is disconnect or an explicit Close call (spec §4.9 state
// machine fragment), which is why this component tracks open/closed
// itself rather than waiting on a server signal.
package flightmaster

import (
	"context"
	"log"
	"sync"

	"github.com/mangosgo/wowcore/internal/component"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/wire"
)

const showTaxiNodesFlag = 1

// TaxiMap is one decoded SHOWTAXINODES snapshot.
type TaxiMap struct {
	FlightMasterGUID uint64
	CurrentNodeID    uint32
	AvailableNodes    []uint32
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
	isOpen bool
	taxi   TaxiMap

	taxiMapUpdates  *stream.Broadcaster[TaxiMap]
	activateUpdates *stream.Broadcaster[uint32]
	statusUpdates   *stream.Broadcaster[bool]
}

func New(client clientIface) *Component {
	c := &Component{
		core:            component.NewCore(),
		client:          client,
		taxiMapUpdates:  stream.NewBroadcaster[TaxiMap](),
		activateUpdates: stream.NewBroadcaster[uint32](),
		statusUpdates:   stream.NewBroadcaster[bool](),
	}
	c.core.Subscribe(client, opcode.SMSG_SHOWTAXINODES, c.parseShowTaxiNodes)
	c.core.Subscribe(client, opcode.SMSG_ACTIVATETAXIREPLY, c.parseActivateTaxiReply)
	c.core.Subscribe(client, opcode.SMSG_TAXINODE_STATUS, c.parseTaxiNodeStatus)
	return c
}

func (c *Component) parseShowTaxiNodes(body []byte) {
	r := wire.NewReader(body)
	flag, err := r.U32()
	if err != nil || flag != showTaxiNodesFlag {
		log.Printf("flightmaster: truncated or malformed SHOWTAXINODES, dropping packet")
		return
	}
	guid, err := r.U64()
	if err != nil {
		log.Printf("flightmaster: truncated SHOWTAXINODES, dropping packet")
		return
	}
	current, err := r.U32()
	if err != nil {
		log.Printf("flightmaster: truncated SHOWTAXINODES, dropping packet")
		return
	}

	var nodes []uint32
	for wordIdx := uint32(0); r.Remaining() >= 4; wordIdx++ {
		word, err := r.U32()
		if err != nil {
			log.Printf("flightmaster: truncated SHOWTAXINODES bitmask, dropping packet")
			return
		}
		for bit := uint32(0); bit < 32; bit++ {
			node := wordIdx*32 + bit
			if node == 0 {
				continue // node 0 is never reported (spec §4.9)
			}
			if word&(1<<bit) != 0 {
				nodes = append(nodes, node)
			}
		}
	}

	m := TaxiMap{FlightMasterGUID: guid, CurrentNodeID: current, AvailableNodes: nodes}
	c.mu.Lock()
	c.taxi = m
	c.isOpen = true
	c.mu.Unlock()

	c.taxiMapUpdates.Emit(m)
	c.statusUpdates.Emit(true)
}

func (c *Component) parseActivateTaxiReply(body []byte) {
	r := wire.NewReader(body)
	result, err := r.U32()
	if err != nil {
		log.Printf("flightmaster: truncated ACTIVATETAXIREPLY, dropping packet")
		return
	}
	c.activateUpdates.Emit(result)
}

func (c *Component) parseTaxiNodeStatus(body []byte) {
	r := wire.NewReader(body)
	if _, err := r.U64(); err != nil {
		log.Printf("flightmaster: truncated TAXINODE_STATUS, dropping packet")
		return
	}
	if _, err := r.U8(); err != nil {
		log.Printf("flightmaster: truncated TAXINODE_STATUS, dropping packet")
		return
	}
}

func (c *Component) TaxiMap() TaxiMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.taxi
}

func (c *Component) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// Close explicitly closes the taxi map (spec §4.9: "disconnect or
// explicit close").
func (c *Component) Close() {
	c.mu.Lock()
	wasOpen := c.isOpen
	c.isOpen = false
	c.mu.Unlock()
	if wasOpen {
		c.statusUpdates.Emit(false)
	}
}

func (c *Component) TaxiMapUpdates() (<-chan TaxiMap, func()) { return c.taxiMapUpdates.Subscribe() }
func (c *Component) ActivateUpdates() (<-chan uint32, func()) {
	return c.activateUpdates.Subscribe()
}
func (c *Component) StatusUpdates() (<-chan bool, func()) { return c.statusUpdates.Subscribe() }

func (c *Component) Hello(ctx context.Context, guid uint64) error {
	return c.client.Send(ctx, opcode.CMSG_GOSSIP_HELLO, wire.NewWriter().U64(guid).Bytes())
}

func (c *Component) QueryTaxiNodeStatus(ctx context.Context, guid uint64) error {
	return c.client.Send(ctx, opcode.CMSG_TAXINODE_STATUS_QUERY, wire.NewWriter().U64(guid).Bytes())
}

func (c *Component) QueryAvailableNodes(ctx context.Context, guid uint64) error {
	return c.client.Send(ctx, opcode.CMSG_TAXIQUERYAVAILABLENODES, wire.NewWriter().U64(guid).Bytes())
}

func (c *Component) ActivateTaxi(ctx context.Context, guid uint64, srcNode, dstNode uint32) error {
	body := wire.NewWriter().U64(guid).U32(srcNode).U32(dstNode).Bytes()
	return c.client.Send(ctx, opcode.CMSG_ACTIVATETAXI, body)
}

func (c *Component) ActivateTaxiExpress(ctx context.Context, guid uint64, srcNode, dstNode uint32) error {
	body := wire.NewWriter().U64(guid).U32(srcNode).U32(dstNode).Bytes()
	return c.client.Send(ctx, opcode.CMSG_ACTIVATETAXIEXPRESS, body)
}

func (c *Component) ClearNode(ctx context.Context, node uint32) error {
	return c.client.Send(ctx, opcode.CMSG_TAXICLEARNODE, wire.NewWriter().U32(node).Bytes())
}

func (c *Component) EnableNode(ctx context.Context, node uint32) error {
	return c.client.Send(ctx, opcode.CMSG_TAXIENABLENODE, wire.NewWriter().U32(node).Bytes())
}

func (c *Component) ShowNodes(ctx context.Context) error {
	return c.client.Send(ctx, opcode.CMSG_TAXISHOWNODES, nil)
}

func (c *Component) ClearAllNodes(ctx context.Context) error {
	return c.client.Send(ctx, opcode.CMSG_TAXICLEARALLNODES, nil)
}

func (c *Component) EnableAllNodes(ctx context.Context) error {
	return c.client.Send(ctx, opcode.CMSG_TAXIENABLEALLNODES, nil)
}

func (c *Component) Dispose() {
	c.core.Dispose(c.taxiMapUpdates.Close, c.activateUpdates.Close, c.statusUpdates.Close)
}
