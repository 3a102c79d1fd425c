package gameobject

import (
	"context"
	"testing"
	"time"

	"github.com/mangosgo/wowcore/internal/opcode"
)

type fakeSender struct {
	op   opcode.Opcode
	body []byte
}

func (f *fakeSender) Send(ctx context.Context, op opcode.Opcode, body []byte) error {
	f.op = op
	f.body = body
	return nil
}

func TestUseSendsEightByteGUID(t *testing.T) {
	s := &fakeSender{}
	c := New(s)
	defer c.Dispose()

	if err := c.Use(context.Background(), 0xFEED); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if s.op != opcode.CMSG_GAMEOBJ_USE || len(s.body) != 8 {
		t.Fatalf("unexpected send: op=%v body=%v", s.op, s.body)
	}
}

func TestOnEventRepublishesToSubscribers(t *testing.T) {
	s := &fakeSender{}
	c := New(s)
	defer c.Dispose()

	ch, cancel := c.EventUpdates()
	defer cancel()

	c.OnEvent(Event{GUID: 1, Kind: "opened"})

	select {
	case e := <-ch:
		if e.GUID != 1 || e.Kind != "opened" {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out")
	}
}
