// Package sendqueue serializes outbound packets onto the single-writer
// Connection, applying the header cipher just before each write (spec
// §4.6). Grounded on the teacher's per-client async write pump shape
// (buffered channel + dedicated goroutine drain loop, see the retrieval
// pack's la2go GameClient.writePump) but simplified: this client proxies
// one world connection, not N concurrent client sockets, so one queue
// suffices.
package sendqueue

import (
	"context"
	"sync"

	"github.com/mangosgo/wowcore/internal/codec"
	"github.com/mangosgo/wowcore/internal/headercipher"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/telemetry"
	"github.com/mangosgo/wowcore/internal/wowerr"
)

// Writer is the single-writer sink the queue drains into — satisfied by
// *internal/conn.Connection.
type Writer interface {
	Write(p []byte) (int, error)
}

type outboundPacket struct {
	op     opcode.Opcode
	packet []byte
	done   chan error // nil for fire-and-forget sends
}

// Queue is the send queue: one consumer goroutine, any number of
// producers. After Close, new sends fail with wowerr.ErrDisconnected. A
// write error is returned to that send's caller wrapped in wowerr.ErrSend;
// it does not close the queue, and a lost connection does not by itself
// fail sends already queued. There is no retry.
type Queue struct {
	w      Writer
	cipher *headercipher.HeaderCipher

	mu     sync.Mutex
	closed bool
	pkts   chan outboundPacket

	stopOnce sync.Once
	stopped  chan struct{}
}

func New(w Writer, cipher *headercipher.HeaderCipher, size int) *Queue {
	if size <= 0 {
		size = 256
	}
	q := &Queue{
		w:       w,
		cipher:  cipher,
		pkts:    make(chan outboundPacket, size),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for pkt := range q.pkts {
		hdr := pkt.packet[:codec.OutboundHeaderSize]
		if q.cipher != nil {
			q.cipher.EncodeSendHeader(hdr)
		}
		_, err := q.w.Write(pkt.packet)
		if pkt.done != nil {
			pkt.done <- err
			close(pkt.done)
		}
		if err != nil {
			telemetry.IncSendError(pkt.op.Name, "write")
		} else {
			telemetry.IncSend(pkt.op.Name)
		}
	}
	close(q.stopped)
}

// Send builds and enqueues an outbound packet, waiting (subject to ctx)
// for the write to actually reach the socket — cancellation before the
// write is admitted cancels cleanly (spec §5); cancellation after
// admission is fire-and-forget (the bytes are already on the wire).
func (q *Queue) Send(ctx context.Context, op opcode.Opcode, body []byte) error {
	packet, err := codec.EncodeOutbound(op, body)
	if err != nil {
		return wowerr.Wrap(err, "sendqueue: encode")
	}

	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return wowerr.Wrapf(wowerr.ErrDisconnected, "send %s after close", op.Name)
	}

	done := make(chan error, 1)
	select {
	case q.pkts <- outboundPacket{op: op, packet: packet, done: done}:
	case <-ctx.Done():
		return wowerr.Wrap(wowerr.ErrCancelled, "sendqueue: admission cancelled")
	case <-q.stopped:
		return wowerr.Wrapf(wowerr.ErrDisconnected, "send %s: queue stopped", op.Name)
	}

	select {
	case err := <-done:
		if err != nil {
			return wowerr.Wrapf(wowerr.ErrSend, "%s: %v", op.Name, err)
		}
		return nil
	case <-ctx.Done():
		// Admitted already; bytes will still be written. Fire-and-forget.
		return nil
	}
}

// Close stops accepting new sends and fails them with ErrDisconnected.
// Already-admitted packets still drain to the writer.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.pkts)
}
