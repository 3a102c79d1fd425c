package component

import (
	"sync"
	"testing"
	"time"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/router"
)

func TestSubscribeRoutesPayloadsThroughParser(t *testing.T) {
	r := router.New()
	c := NewCore()

	var mu sync.Mutex
	var seen [][]byte
	done := make(chan struct{}, 3)

	c.Subscribe(r, opcode.SMSG_FRIEND_LIST, func(body []byte) {
		mu.Lock()
		seen = append(seen, body)
		mu.Unlock()
		done <- struct{}{}
	})

	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{1})
	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{2})
	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{3})

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for parse callback %d", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 || seen[0][0] != 1 || seen[1][0] != 2 || seen[2][0] != 3 {
		t.Fatalf("unexpected payloads: %v", seen)
	}
}

func TestOpInProgressTracksTransitionTimestamp(t *testing.T) {
	c := NewCore()
	if c.IsOpInProgress() {
		t.Fatalf("expected not in progress initially")
	}

	before := time.Now()
	c.SetOpInProgress(true)
	if !c.IsOpInProgress() {
		t.Fatalf("expected in progress")
	}
	if c.LastOpTime().Before(before) {
		t.Fatalf("expected LastOpTime stamped at or after transition")
	}

	stamped := c.LastOpTime()
	c.SetOpInProgress(true) // already true: must not re-stamp
	if c.LastOpTime() != stamped {
		t.Fatalf("re-asserting in-progress must not move the timestamp")
	}

	c.SetOpInProgress(false)
	if c.IsOpInProgress() {
		t.Fatalf("expected not in progress after clearing")
	}
}

func TestDisposeStopsDeliveryAndRunsFinalizers(t *testing.T) {
	r := router.New()
	c := NewCore()

	var mu sync.Mutex
	count := 0
	c.Subscribe(r, opcode.SMSG_FRIEND_LIST, func(body []byte) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	finalized := false
	c.Dispose(func() { finalized = true })

	if !finalized {
		t.Fatalf("expected finalizer to run")
	}
	if r.SubscriberCount(opcode.SMSG_FRIEND_LIST) != 0 {
		t.Fatalf("expected Dispose to drop the router subscription")
	}

	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{9})
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Fatalf("expected no deliveries after Dispose, got %d", count)
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	c := NewCore()
	calls := 0
	c.Dispose(func() { calls++ })
	c.Dispose(func() { calls++ })
	if calls != 1 {
		t.Fatalf("expected finalizer to run exactly once, got %d", calls)
	}
}
