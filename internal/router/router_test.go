package router

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mangosgo/wowcore/internal/opcode"
)

func recvAll(t *testing.T, sub *Subscription, n int, timeout time.Duration) [][]byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		body, ok, err := sub.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv #%d: %v", i, err)
		}
		if !ok {
			t.Fatalf("Recv #%d: subscription closed early", i)
		}
		out = append(out, body)
	}
	return out
}

func TestDispatchDeliversInOrderPerSubscriber(t *testing.T) {
	r := New()
	sub := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)

	for i := 0; i < 5; i++ {
		r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{byte(i)})
	}

	got := recvAll(t, sub, 5, time.Second)
	for i, body := range got {
		if len(body) != 1 || body[0] != byte(i) {
			t.Fatalf("packet %d out of order: %v", i, got)
		}
	}
}

func TestDispatchFansOutToEverySubscriber(t *testing.T) {
	r := New()
	a := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)
	b := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)

	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{42})

	gotA := recvAll(t, a, 1, time.Second)
	gotB := recvAll(t, b, 1, time.Second)
	if gotA[0][0] != 42 || gotB[0][0] != 42 {
		t.Fatalf("fan-out mismatch: a=%v b=%v", gotA, gotB)
	}
}

func TestDispatchIsolatesDifferentOpcodes(t *testing.T) {
	r := New()
	friends := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)
	tutorial := r.RegisterOpcodeStream(opcode.SMSG_TUTORIAL_FLAGS)

	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{1})
	r.Dispatch(opcode.SMSG_TUTORIAL_FLAGS, []byte{2})
	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{3})

	gotFriends := recvAll(t, friends, 2, time.Second)
	gotTutorial := recvAll(t, tutorial, 1, time.Second)

	if gotFriends[0][0] != 1 || gotFriends[1][0] != 3 {
		t.Fatalf("friend stream got interleaved traffic: %v", gotFriends)
	}
	if gotTutorial[0][0] != 2 {
		t.Fatalf("tutorial stream wrong body: %v", gotTutorial)
	}
}

func TestDispatchToUnregisteredOpcodeIsDroppedSilently(t *testing.T) {
	r := New()
	// No subscriber for this opcode at all; must not panic or block.
	r.Dispatch(opcode.SMSG_TUTORIAL_FLAGS, []byte{1})
	if r.SubscriberCount(opcode.SMSG_TUTORIAL_FLAGS) != 0 {
		t.Fatalf("expected no subscribers")
	}
}

func TestBackpressureShedsOldestAndCountsDropped(t *testing.T) {
	r := New().WithBacklogLimit(2)
	sub := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)

	for i := 0; i < 5; i++ {
		r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{byte(i)})
	}

	// Backlog limit 2: only the last two dispatched packets (3, 4) survive.
	got := recvAll(t, sub, 2, time.Second)
	if got[0][0] != 3 || got[1][0] != 4 {
		t.Fatalf("expected shed-oldest to keep the newest 2, got %v", got)
	}
	if sub.Dropped() != 3 {
		t.Fatalf("expected 3 dropped, got %d", sub.Dropped())
	}
}

func TestSlowSubscriberNeverBlocksDispatch(t *testing.T) {
	r := New().WithBacklogLimit(4)
	slow := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)
	_ = slow // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte(fmt.Sprintf("%d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Dispatch blocked on a subscriber that never drains")
	}
}

// TestSubscriptionCancellationScenario mirrors the end-to-end router
// scenario: subscribe twice, drop one subscription, dispatch three
// packets, re-subscribe, dispatch one more — the dropped subscriber must
// see nothing past its Close, and the new subscriber must not see any
// packet dispatched before it registered.
func TestSubscriptionCancellationScenario(t *testing.T) {
	r := New()
	first := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)
	second := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)

	first.Close()

	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{1})
	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{2})
	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{3})

	got := recvAll(t, second, 3, time.Second)
	if got[0][0] != 1 || got[1][0] != 2 || got[2][0] != 3 {
		t.Fatalf("second subscriber missed traffic: %v", got)
	}

	// first was closed: Recv must report closed (ok=false), not replay.
	if body, ok, err := first.Recv(context.Background()); ok || err != nil || body != nil {
		t.Fatalf("expected closed subscription to report done, got body=%v ok=%v err=%v", body, ok, err)
	}

	third := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)
	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{4})

	got4 := recvAll(t, third, 1, time.Second)
	if got4[0][0] != 4 {
		t.Fatalf("late joiner got wrong packet: %v", got4)
	}

	// Slot is retained even though `first` unsubscribed: two live
	// subscribers remain (second, third).
	if n := r.SubscriberCount(opcode.SMSG_FRIEND_LIST); n != 2 {
		t.Fatalf("expected 2 live subscribers, got %d", n)
	}
}

func TestRegisterOpcodeStreamIsIdempotentAcrossCalls(t *testing.T) {
	r := New()
	a := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)
	b := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)
	if a == b {
		t.Fatalf("expected independent subscription handles")
	}
	if r.SubscriberCount(opcode.SMSG_FRIEND_LIST) != 2 {
		t.Fatalf("expected 2 subscribers sharing one slot")
	}
}

func TestRecvRespectsContextCancellation(t *testing.T) {
	r := New()
	sub := r.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok, err := sub.Recv(ctx); ok || err == nil {
		t.Fatalf("expected cancellation error, got ok=%v err=%v", ok, err)
	}
}
