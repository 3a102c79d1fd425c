// Package debugtap serves a purely observational websocket feed of every
// packet the router dispatches, for external tooling (SPEC_FULL §4.11).
// Grounded on the teacher's nhooyr.io/websocket usage in
// internal/outline_dial.go (the same library, used client-side there;
// this is the server accept side of the identical dependency). Never
// affects router fan-out ordering or backpressure: failures here are
// logged and dropped, never escalated to the game session.
package debugtap

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/router"
)

// Event is the JSON shape written to every attached debug client.
type Event struct {
	Opcode    string `json:"opcode"`
	Direction string `json:"direction"`
	Length    int    `json:"length"`
	Hex       string `json:"hex"`
}

// Tap attaches to a Router's observational hook and fans every dispatched
// packet out to any number of websocket clients.
type Tap struct {
	mu      sync.Mutex
	clients map[int]*websocket.Conn
	nextID  int
}

func New() *Tap {
	return &Tap{clients: make(map[int]*websocket.Conn)}
}

// Attach installs this tap on r. Call once per Router.
func (t *Tap) Attach(r *router.Router) {
	r.SetTap(func(op opcode.Opcode, body []byte) {
		t.broadcast(op, body)
	})
}

func (t *Tap) broadcast(op opcode.Opcode, body []byte) {
	t.mu.Lock()
	if len(t.clients) == 0 {
		t.mu.Unlock()
		return
	}
	clients := make(map[int]*websocket.Conn, len(t.clients))
	for id, c := range t.clients {
		clients[id] = c
	}
	t.mu.Unlock()

	evt := Event{
		Opcode:    op.Name,
		Direction: "inbound",
		Length:    len(body),
		Hex:       hex.EncodeToString(body),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("debugtap: marshal failed: %v", err)
		return
	}

	for id, c := range clients {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := c.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			log.Printf("debugtap: write to client %d failed, dropping it: %v", id, err)
			t.remove(id)
		}
	}
}

func (t *Tap) remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.clients[id]; ok {
		_ = c.Close(websocket.StatusNormalClosure, "tap removed")
		delete(t.clients, id)
	}
}

// ServeHTTP accepts one websocket client and keeps it attached until it
// disconnects or the request context ends.
func (t *Tap) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("debugtap: accept failed: %v", err)
		return
	}

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.clients[id] = c
	t.mu.Unlock()
	defer t.remove(id)

	// Block until the client goes away; this tap never reads application
	// messages from it.
	for {
		if _, _, err := c.Read(r.Context()); err != nil {
			return
		}
	}
}

// StartServer serves the tap on addr until ctx is cancelled, matching the
// lifecycle shape of internal/telemetry.StartServer.
func (t *Tap) StartServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/debug", t)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
