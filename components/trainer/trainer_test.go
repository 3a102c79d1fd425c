package trainer

import (
	"context"
	"testing"
	"time"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/router"
	"github.com/mangosgo/wowcore/internal/wire"
)

type fakeClient struct {
	*router.Router
}

func (f *fakeClient) Send(ctx context.Context, op opcode.Opcode, body []byte) error { return nil }

func TestTrainerListParsesOfferings(t *testing.T) {
	client := &fakeClient{Router: router.New()}
	c := New(client)
	defer c.Dispose()

	ch, cancel := c.ListUpdates()
	defer cancel()

	body := wire.NewWriter().U64(0x99).U32(1).U32(0).U32(1000).U32(50).Bytes()
	client.Dispatch(opcode.SMSG_TRAINER_LIST, body)

	select {
	case spells := <-ch:
		if len(spells) != 1 || spells[0].SpellID != 1000 || spells[0].Cost != 50 {
			t.Fatalf("unexpected spells: %+v", spells)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out")
	}
}

func TestTrainerBuySucceededAndFailed(t *testing.T) {
	client := &fakeClient{Router: router.New()}
	c := New(client)
	defer c.Dispose()

	ch, cancel := c.BuyUpdates()
	defer cancel()

	client.Dispatch(opcode.SMSG_TRAINER_BUY_SUCCEEDED, wire.NewWriter().U32(42).U32(10).Bytes())
	select {
	case outcome := <-ch:
		if !outcome.Success || outcome.SpellID != 42 || outcome.Cost != 10 {
			t.Fatalf("unexpected outcome: %+v", outcome)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out")
	}

	client.Dispatch(opcode.SMSG_TRAINER_BUY_FAILED, wire.NewWriter().U32(7).Bytes())
	select {
	case outcome := <-ch:
		if outcome.Success || outcome.ErrorCode != 7 {
			t.Fatalf("unexpected outcome: %+v", outcome)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out")
	}
}
