package stream

import "testing"

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster[int]()
	ch1, _ := b.Subscribe()
	ch2, _ := b.Subscribe()

	b.Emit(42)

	if v := <-ch1; v != 42 {
		t.Fatalf("ch1 got %d", v)
	}
	if v := <-ch2; v != 42 {
		t.Fatalf("ch2 got %d", v)
	}
}

func TestBroadcasterUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster[string]()
	ch, unsub := b.Subscribe()
	unsub()

	b.Emit("hello")

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
	if n := b.SubscriberCount(); n != 0 {
		t.Fatalf("expected 0 subscribers, got %d", n)
	}
}

func TestBroadcasterCloseCompletesAllStreams(t *testing.T) {
	b := NewBroadcaster[int]()
	ch1, _ := b.Subscribe()
	ch2, _ := b.Subscribe()

	b.Close()

	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}

	// Subscribing after close yields an already-closed channel, never a panic.
	ch3, _ := b.Subscribe()
	if _, ok := <-ch3; ok {
		t.Fatalf("expected post-close subscribe to be pre-closed")
	}
}

func TestBroadcasterEmitNeverBlocksOnFullSubscriber(t *testing.T) {
	b := NewBroadcaster[int]()
	ch, _ := b.Subscribe()

	for i := 0; i < defaultBufferSize+10; i++ {
		b.Emit(i) // must never block even though nobody is draining ch
	}

	if len(ch) != defaultBufferSize {
		t.Fatalf("expected buffer full at %d, got %d", defaultBufferSize, len(ch))
	}
}
