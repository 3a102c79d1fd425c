// Package codec assembles outbound packets (header + body) and resolves
// numeric opcode IDs read off the wire to their named Opcode (spec §4.4).
package codec

import (
	"fmt"

	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/wowerr"
)

// InboundHeaderSize is the 4-byte SMSG header: size (u16 BE) + opcode (u16 LE).
const InboundHeaderSize = 4

// OutboundHeaderSize is the 6-byte CMSG header: size (u16 BE) + opcode (u32 LE).
const OutboundHeaderSize = 6

// maxBodySize is the largest body that still fits the u16 size field once
// the 4 opcode-plus-size-counted bytes are added: 65535 - 4 + 2... per
// spec §4.4 the concrete bound is "body > 65533 fails".
const maxBodySize = 65533

// DecodeInboundHeader splits a 4-byte inbound header (already
// cipher-decoded if a HeaderCipher is installed) into the declared body
// size and the resolved Opcode. ok is false if the numeric ID isn't in
// the handled set (spec §3 invariant 1: caller must still account for the
// bytes, logging "unhandled opcode" and discarding the body).
func DecodeInboundHeader(hdr [InboundHeaderSize]byte) (bodySize int, op opcode.Opcode, ok bool) {
	size := int(hdr[0])<<8 | int(hdr[1])
	id := uint32(hdr[2]) | uint32(hdr[3])<<8
	op, ok = opcode.LookupSMSG(id)
	if !ok {
		op = opcode.Opcode{Name: fmt.Sprintf("UNKNOWN_0x%04X", id), ID: id}
	}
	return size - 2, op, ok
}

// EncodeOutbound assembles a full 6-byte-header-plus-body outbound packet.
func EncodeOutbound(op opcode.Opcode, body []byte) ([]byte, error) {
	if len(body) > maxBodySize {
		return nil, wowerr.Wrapf(wowerr.ErrPayloadTooLarge, "opcode %s: body length %d exceeds %d", op.Name, len(body), maxBodySize)
	}

	size := 4 + len(body) // opcode width (4 bytes) + body, per spec §3/§6.
	out := make([]byte, OutboundHeaderSize+len(body))
	out[0] = byte(size >> 8)
	out[1] = byte(size)
	out[2] = byte(op.ID)
	out[3] = byte(op.ID >> 8)
	out[4] = byte(op.ID >> 16)
	out[5] = byte(op.ID >> 24)
	copy(out[OutboundHeaderSize:], body)
	return out, nil
}
