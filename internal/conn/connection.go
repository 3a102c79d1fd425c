// Package conn owns the duplex TCP socket to the world server (spec §4.1).
// Grounded on the teacher's bidirectional-copy error handling in
// internal/outline_tcp.go's ProxyTCPOverOutlineWS (one error channel, first
// error wins, both directions always closed) and the single
// sync.Once-guarded close in internal/outline_tcp.go's WSStreamConn.Close.
package conn

import (
	"context"
	"net"
	"sync"

	"github.com/mangosgo/wowcore/internal/stream"
	"github.com/mangosgo/wowcore/internal/telemetry"
)

// Connection owns the socket. Write MUST be single-writer: the send queue
// (internal/sendqueue) is its only caller, per spec §4.1.
type Connection struct {
	conn         net.Conn
	disconnected *stream.Broadcaster[error]
	closeOnce    sync.Once
}

// Dial opens the TCP connection to a world server at host:port.
func Dial(ctx context.Context, addr string) (*Connection, error) {
	d := &net.Dialer{}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	telemetry.SetConnected(true)
	return &Connection{conn: nc, disconnected: stream.NewBroadcaster[error]()}, nil
}

// OnDisconnected yields exactly one emission: nil for a graceful
// Disconnect() call, or the triggering error for an I/O failure.
func (c *Connection) OnDisconnected() (<-chan error, func()) {
	return c.disconnected.Subscribe()
}

// Read is used only by the framer's byte stream; it reports any read
// error to OnDisconnected exactly once and closes both directions.
func (c *Connection) Read(p []byte) (int, error) {
	n, err := c.conn.Read(p)
	if err != nil {
		c.fail(err)
	}
	return n, err
}

// Write is the single-writer synchronous send path used only by the send
// queue (internal/sendqueue).
func (c *Connection) Write(p []byte) (int, error) {
	n, err := c.conn.Write(p)
	if err != nil {
		c.fail(err)
	}
	return n, err
}

// Disconnect closes the connection gracefully (on_disconnected emits nil).
func (c *Connection) Disconnect() error {
	var closeErr error
	c.closeOnce.Do(func() {
		closeErr = c.conn.Close()
		telemetry.SetConnected(false)
		c.disconnected.Emit(nil)
		c.disconnected.Close()
	})
	return closeErr
}

func (c *Connection) fail(err error) {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		telemetry.SetConnected(false)
		c.disconnected.Emit(err)
		c.disconnected.Close()
	})
}
