// Package friend decodes SMSG_FRIEND_LIST / SMSG_FRIEND_STATUS and builds
// CMSG_ADD_FRIEND / CMSG_DEL_FRIEND / CMSG_FRIEND_LIST (spec §4.9 Friend).
package friend

import (
	"context"
	"log"
	"sync"

	"github.com/mangosgo/wowcore/internal/component"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/wire"
)

// Status result codes carried by SMSG_FRIEND_STATUS (spec §4.9, closed set).
const (
	StatusDbError            = 0
	StatusListFull           = 1
	StatusOnline             = 2
	StatusOffline            = 3
	StatusNotFound           = 4
	StatusRemoved            = 5
	StatusAddedOnline        = 6
	StatusAddedOffline       = 7
	StatusAlreadyThere       = 8
	StatusSelf               = 9
	StatusEnemy              = 10
	StatusIgnoreFull         = 11
	StatusIgnoreSelf         = 12
	StatusIgnoreNotFound     = 13
	StatusIgnoreAlreadyThere = 14
	StatusIgnoreAdded        = 15
	StatusIgnoreRemoved      = 16
)

// Entry is one decoded friend record.
type Entry struct {
	GUID     uint64
	Status   uint8
	AreaID   uint32
	Level    uint32
	Class    uint32
	IsOnline bool
}

// Sender is the narrow send surface the builders need.
type Sender interface {
	Send(ctx context.Context, op opcode.Opcode, body []byte) error
}

// clientIface is the slice of WorldClient the Friend component needs:
// subscription registration plus outbound sends.
type clientIface interface {
	component.OpcodeSource
	Sender
}

type Component struct {
	core   *component.Core
	client clientIface

	mu      sync.Mutex
	friends map[uint64]Entry

	listUpdates   *stream.Broadcaster[[]Entry]
	statusUpdates *stream.Broadcaster[Entry]
}

func New(client clientIface) *Component {
	c := &Component{
		core:          component.NewCore(),
		client:        client,
		friends:       make(map[uint64]Entry),
		listUpdates:   stream.NewBroadcaster[[]Entry](),
		statusUpdates: stream.NewBroadcaster[Entry](),
	}
	c.core.Subscribe(client, opcode.SMSG_FRIEND_LIST, c.parseFriendList)
	c.core.Subscribe(client, opcode.SMSG_FRIEND_STATUS, c.parseFriendStatus)
	return c
}

func (c *Component) parseFriendList(body []byte) {
	r := wire.NewReader(body)
	count, err := r.U8()
	if err != nil {
		log.Printf("friend: truncated FRIEND_LIST, dropping packet")
		return
	}

	entries := make([]Entry, 0, count)
	for i := uint8(0); i < count; i++ {
		guid, err := r.U64()
		if err != nil {
			log.Printf("friend: truncated FRIEND_LIST entry %d, dropping packet", i)
			return
		}
		status, err := r.U8()
		if err != nil {
			log.Printf("friend: truncated FRIEND_LIST entry %d, dropping packet", i)
			return
		}
		e := Entry{GUID: guid, Status: status, IsOnline: status != 0}
		if status != 0 {
			areaID, err1 := r.U32()
			level, err2 := r.U32()
			class, err3 := r.U32()
			if err1 != nil || err2 != nil || err3 != nil {
				log.Printf("friend: truncated FRIEND_LIST entry %d extras, dropping packet", i)
				return
			}
			e.AreaID, e.Level, e.Class = areaID, level, class
		}
		entries = append(entries, e)
	}

	friends := make(map[uint64]Entry, len(entries))
	for _, e := range entries {
		friends[e.GUID] = e
	}

	c.mu.Lock()
	c.friends = friends
	c.mu.Unlock()
	c.listUpdates.Emit(entries)
}

func (c *Component) parseFriendStatus(body []byte) {
	r := wire.NewReader(body)
	result, err := r.U8()
	if err != nil {
		log.Printf("friend: truncated FRIEND_STATUS, dropping packet")
		return
	}
	guid, err := r.U64()
	if err != nil {
		log.Printf("friend: truncated FRIEND_STATUS, dropping packet")
		return
	}

	e := Entry{GUID: guid, Status: result, IsOnline: result == StatusAddedOnline || result == StatusOnline}
	if (result == StatusAddedOnline || result == StatusOnline) && r.Remaining() >= 13 {
		status, _ := r.U8()
		areaID, _ := r.U32()
		level, _ := r.U32()
		class, _ := r.U32()
		e.Status = status
		e.IsOnline = status != 0
		e.AreaID, e.Level, e.Class = areaID, level, class
	}

	c.mu.Lock()
	c.friends[guid] = e
	c.mu.Unlock()

	c.statusUpdates.Emit(e)
}

// Entries returns a snapshot of the current friend list.
func (c *Component) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.friends))
	for _, e := range c.friends {
		out = append(out, e)
	}
	return out
}

func (c *Component) ListUpdates() (<-chan []Entry, func())   { return c.listUpdates.Subscribe() }
func (c *Component) StatusUpdates() (<-chan Entry, func())   { return c.statusUpdates.Subscribe() }

// AddFriend sends CMSG_ADD_FRIEND (cstring name).
func (c *Component) AddFriend(ctx context.Context, name string) error {
	body := wire.NewWriter().CString(name).Bytes()
	return c.client.Send(ctx, opcode.CMSG_ADD_FRIEND, body)
}

// DelFriend sends CMSG_DEL_FRIEND (8-byte GUID, never a name).
func (c *Component) DelFriend(ctx context.Context, guid uint64) error {
	body := wire.NewWriter().U64(guid).Bytes()
	return c.client.Send(ctx, opcode.CMSG_DEL_FRIEND, body)
}

// RequestFriendList sends CMSG_FRIEND_LIST (empty body).
func (c *Component) RequestFriendList(ctx context.Context) error {
	return c.client.Send(ctx, opcode.CMSG_FRIEND_LIST, nil)
}

func (c *Component) Dispose() {
	c.core.Dispose(c.listUpdates.Close, c.statusUpdates.Close)
}
