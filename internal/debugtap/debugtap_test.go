package debugtap

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/router"
)

func TestTapBroadcastsDispatchedPacketsToAttachedClient(t *testing.T) {
	tap := New()
	r := router.New()
	tap.Attach(r)

	srv := httptest.NewServer(tap)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "test done")

	// Give the server goroutine a moment to register the client before
	// dispatching, since attach happens asynchronously relative to Dial
	// returning.
	time.Sleep(50 * time.Millisecond)

	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{1, 2, 3})

	readCtx, readCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer readCancel()
	_, data, err := conn.Read(readCtx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if evt.Opcode != opcode.SMSG_FRIEND_LIST.Name || evt.Length != 3 || evt.Hex != "010203" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestBroadcastWithNoClientsIsNoOp(t *testing.T) {
	tap := New()
	r := router.New()
	tap.Attach(r)

	r.Dispatch(opcode.SMSG_FRIEND_LIST, []byte{1})
}
