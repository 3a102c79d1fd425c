package conn

import (
	"bytes"
	"io"
	"testing"

	"github.com/mangosgo/wowcore/internal/headercipher"
	"github.com/mangosgo/wowcore/internal/opcode"
)

func buildInboundFrame(op opcode.Opcode, body []byte) []byte {
	size := len(body) + 2
	hdr := []byte{byte(size >> 8), byte(size), byte(op.ID), byte(op.ID >> 8)}
	return append(hdr, body...)
}

func TestFramerDecodesKnownOpcode(t *testing.T) {
	body := []byte{1, 2, 3, 4}
	raw := buildInboundFrame(opcode.SMSG_FRIEND_LIST, body)
	f := NewFramer(bytes.NewReader(raw), nil)

	frame, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if frame.Unknown {
		t.Fatalf("expected known opcode")
	}
	if frame.Op != opcode.SMSG_FRIEND_LIST {
		t.Fatalf("got %v", frame.Op)
	}
	if string(frame.Body) != string(body) {
		t.Fatalf("body mismatch: %v", frame.Body)
	}
}

func TestFramerFlagsUnknownOpcodeButStillConsumesBody(t *testing.T) {
	raw := []byte{0, 4, 0xFE, 0xFF, 0xAA, 0xBB}
	r := bytes.NewReader(raw)
	f := NewFramer(r, nil)

	frame, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !frame.Unknown {
		t.Fatalf("expected unknown opcode")
	}
	if len(frame.Body) != 2 {
		t.Fatalf("expected body len 2, got %d", len(frame.Body))
	}
	if r.Len() != 0 {
		t.Fatalf("expected body fully consumed, %d bytes left", r.Len())
	}
}

func TestFramerSocketCloseMidFrameSignalsEOF(t *testing.T) {
	raw := []byte{0, 10, byte(opcode.SMSG_FRIEND_LIST.ID), byte(opcode.SMSG_FRIEND_LIST.ID >> 8), 1, 2} // declares 8 body bytes, only 2 present
	f := NewFramer(bytes.NewReader(raw), nil)

	if _, err := f.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestFramerMalformedSizeIsFramingError(t *testing.T) {
	raw := []byte{0, 1, 0, 0} // size=1 < 2
	f := NewFramer(bytes.NewReader(raw), nil)
	if _, err := f.Next(); err == nil {
		t.Fatalf("expected framing error")
	}
}

func TestFramerDecodesThroughInstalledCipher(t *testing.T) {
	var key [headercipher.KeySize]byte
	for i := range key {
		key[i] = byte(i + 1)
	}

	enc := headercipher.New()
	enc.Install(key)

	body := []byte{9, 9, 9}
	size := len(body) + 2
	hdr := []byte{byte(size >> 8), byte(size), byte(opcode.SMSG_FRIEND_LIST.ID), byte(opcode.SMSG_FRIEND_LIST.ID >> 8)}
	enc.EncodeSendHeader(hdr) // pretend this is the encode side of a symmetric peer

	dec := headercipher.New()
	dec.Install(key)

	raw := append(append([]byte{}, hdr...), body...)
	f := NewFramer(bytes.NewReader(raw), dec)

	frame, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if frame.Op != opcode.SMSG_FRIEND_LIST {
		t.Fatalf("got %v", frame.Op)
	}
	if string(frame.Body) != string(body) {
		t.Fatalf("body mismatch")
	}
}
