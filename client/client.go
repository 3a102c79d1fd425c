// Package client assembles the connection pipeline into the narrow
// WorldClient facade components are built against (spec §4.7). Grounded on
// the teacher's top-level wiring in client/outline_client.go: construct the
// transport, hand a read loop its own goroutine, and expose only the
// surface callers need rather than the pipeline internals.
package client

import (
	"context"
	"io"
	"log"

	"github.com/mangosgo/wowcore/internal/conn"
	"github.com/mangosgo/wowcore/internal/headercipher"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/router"
	"github.com/mangosgo/wowcore/internal/sendqueue"
	"github.com/mangosgo/wowcore/internal/telemetry"
	"github.com/mangosgo/wowcore/internal/wowerr"
)

// WorldClient is the facade every component is built against (spec §4.7):
// register_opcode_stream, send, on_disconnected, plus the lifecycle calls
// InstallSessionKey and Disconnect and the Router accessor for tooling.
type WorldClient struct {
	connection *conn.Connection
	framer     *conn.Framer
	cipher     *headercipher.HeaderCipher
	router     *router.Router
	queue      *sendqueue.Queue

	readDone chan struct{}
}

// Options configures the pipeline assembled by Connect.
type Options struct {
	RouterBacklogLimit int
	SendQueueSize      int
}

// Connect dials addr, wires the framer/router/send-queue pipeline, and
// starts the read loop. The session key, if any, is installed later via
// InstallSessionKey once the external handshake completes (spec §5:
// handshake is out of scope for this repo).
func Connect(ctx context.Context, addr string, opts Options) (*WorldClient, error) {
	c, err := conn.Dial(ctx, addr)
	if err != nil {
		return nil, wowerr.Wrap(err, "client: dial")
	}

	cipher := headercipher.New()
	r := router.New()
	if opts.RouterBacklogLimit > 0 {
		r = r.WithBacklogLimit(opts.RouterBacklogLimit)
	}
	q := sendqueue.New(c, cipher, opts.SendQueueSize)

	wc := &WorldClient{
		connection: c,
		framer:     conn.NewFramer(c, cipher),
		cipher:     cipher,
		router:     r,
		queue:      q,
		readDone:   make(chan struct{}),
	}

	go wc.readLoop()
	return wc, nil
}

// InstallSessionKey activates the header cipher for both directions (spec
// §4.3: "installed once after authentication succeeds").
func (w *WorldClient) InstallSessionKey(key [headercipher.KeySize]byte) {
	w.cipher.Install(key)
	telemetry.IncCipherInstall()
}

// readLoop drains frames and dispatches them to the router until the
// connection closes (spec §5: "a read-loop task (frame → router)").
func (w *WorldClient) readLoop() {
	defer close(w.readDone)
	for {
		frame, err := w.framer.Next()
		if err != nil {
			if err != io.EOF {
				log.Printf("client: read loop stopped: %v", err)
			}
			return
		}
		w.router.Dispatch(frame.Op, frame.Body)
	}
}

// RegisterOpcodeStream implements component.OpcodeSource.
func (w *WorldClient) RegisterOpcodeStream(op opcode.Opcode) *router.Subscription {
	return w.router.RegisterOpcodeStream(op)
}

// Router exposes the underlying Router so observational tooling (e.g.
// internal/debugtap) can attach to it without widening WorldClient's own
// surface (spec §4.7 keeps that surface narrow).
func (w *WorldClient) Router() *router.Router {
	return w.router
}

// Send builds and enqueues an outbound packet (spec §4.7).
func (w *WorldClient) Send(ctx context.Context, op opcode.Opcode, body []byte) error {
	return w.queue.Send(ctx, op, body)
}

// OnDisconnected yields exactly one emission on connection loss or a
// graceful Disconnect.
func (w *WorldClient) OnDisconnected() (<-chan error, func()) {
	return w.connection.OnDisconnected()
}

// Disconnect tears down the connection and send queue. The read loop exits
// on its own once the socket closes.
func (w *WorldClient) Disconnect() error {
	w.queue.Close()
	err := w.connection.Disconnect()
	<-w.readDone
	return err
}
