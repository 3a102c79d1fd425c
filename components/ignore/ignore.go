// Package ignore decodes SMSG_IGNORE_LIST and builds the ignore-list CMSG
// opcodes (spec §4.9 GameObject/Emote/Ignore/Trainer family).
package ignore

import (
	"context"
	"log"
	"sync"

	"github.com/mangosgo/wowcore/internal/component"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/wire"
)

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

	mu    sync.Mutex
	names []string

	listUpdates *stream.Broadcaster[[]string]
}

func New(client clientIface) *Component {
	c := &Component{
		core:        component.NewCore(),
		client:      client,
		listUpdates: stream.NewBroadcaster[[]string](),
	}
	c.core.Subscribe(client, opcode.SMSG_IGNORE_LIST, c.parseIgnoreList)
	return c
}

func (c *Component) parseIgnoreList(body []byte) {
	r := wire.NewReader(body)
	count, err := r.U32()
	if err != nil {
		log.Printf("ignore: truncated IGNORE_LIST, dropping packet")
		return
	}

	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.CString()
		if err != nil {
			log.Printf("ignore: truncated IGNORE_LIST entry %d, dropping packet", i)
			return
		}
		names = append(names, name)
	}

	c.mu.Lock()
	c.names = names
	c.mu.Unlock()
	c.listUpdates.Emit(names)
}

func (c *Component) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

func (c *Component) ListUpdates() (<-chan []string, func()) { return c.listUpdates.Subscribe() }

func (c *Component) AddIgnore(ctx context.Context, name string) error {
	return c.client.Send(ctx, opcode.CMSG_ADD_IGNORE, wire.NewWriter().CString(name).Bytes())
}

func (c *Component) DelIgnore(ctx context.Context, name string) error {
	return c.client.Send(ctx, opcode.CMSG_DEL_IGNORE, wire.NewWriter().CString(name).Bytes())
}

func (c *Component) Dispose() {
	c.core.Dispose(c.listUpdates.Close)
}
