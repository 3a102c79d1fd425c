package client

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/mangosgo/wowcore/internal/opcode"
)

func startEchoServer(t *testing.T) (addr string, accepted chan net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	accepted = make(chan net.Conn, 1)
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- nc
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String(), accepted
}

func TestConnectDispatchesInboundFrameToSubscriber(t *testing.T) {
	addr, accepted := startEchoServer(t)

	wc, err := Connect(context.Background(), addr, Options{})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer wc.Disconnect()

	server := <-accepted
	defer server.Close()

	sub := wc.RegisterOpcodeStream(opcode.SMSG_FRIEND_LIST)

	body := []byte{1, 2, 3}
	size := len(body) + 2
	frame := []byte{byte(size >> 8), byte(size), byte(opcode.SMSG_FRIEND_LIST.ID), byte(opcode.SMSG_FRIEND_LIST.ID >> 8)}
	frame = append(frame, body...)
	if _, err := server.Write(frame); err != nil {
		t.Fatalf("server write: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, ok, err := sub.Recv(ctx)
	if err != nil || !ok {
		t.Fatalf("Recv: ok=%v err=%v", ok, err)
	}
	if string(got) != string(body) {
		t.Fatalf("body mismatch: %v", got)
	}
}

func TestSendWritesOutboundPacketToServer(t *testing.T) {
	addr, accepted := startEchoServer(t)

	wc, err := Connect(context.Background(), addr, Options{})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer wc.Disconnect()

	server := <-accepted
	defer server.Close()

	body := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x01, 0x02}
	if err := wc.Send(context.Background(), opcode.CMSG_SET_SELECTION, body); err != nil {
		t.Fatalf("Send: %v", err)
	}

	r := bufio.NewReader(server)
	hdr := make([]byte, 6)
	if _, err := r.Read(hdr); err != nil {
		t.Fatalf("server read header: %v", err)
	}
	size := int(hdr[0])<<8 | int(hdr[1])
	if size != 4+len(body) {
		t.Fatalf("unexpected size field %d", size)
	}
	id := uint32(hdr[2]) | uint32(hdr[3])<<8 | uint32(hdr[4])<<16 | uint32(hdr[5])<<24
	if id != opcode.CMSG_SET_SELECTION.ID {
		t.Fatalf("unexpected opcode id %x", id)
	}
}

func TestOnDisconnectedFiresOnGracefulDisconnect(t *testing.T) {
	addr, accepted := startEchoServer(t)

	wc, err := Connect(context.Background(), addr, Options{})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	server := <-accepted
	defer server.Close()

	ch, cancel := wc.OnDisconnected()
	defer cancel()

	if err := wc.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	select {
	case err := <-ch:
		if err != nil {
			t.Fatalf("expected nil error on graceful disconnect, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for on_disconnected emission")
	}
}
