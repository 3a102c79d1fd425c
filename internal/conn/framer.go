package conn

import (
	"io"

	"github.com/mangosgo/wowcore/internal/codec"
	"github.com/mangosgo/wowcore/internal/headercipher"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/wowerr"
)

// Framer reads inbound frames off a byte stream (spec §4.2): a 4-byte
// header (optionally cipher-decoded), then exactly size-2 body bytes.
type Framer struct {
	r      io.Reader
	cipher *headercipher.HeaderCipher
}

func NewFramer(r io.Reader, cipher *headercipher.HeaderCipher) *Framer {
	return &Framer{r: r, cipher: cipher}
}

// Frame is one decoded inbound packet. Unknown holds true when the opcode
// wasn't in the handled set; Body is still fully consumed off the wire
// either way, satisfying spec §3 invariant 1.
type Frame struct {
	Op      opcode.Opcode
	Body    []byte
	Unknown bool
}

// Next reads and returns exactly one frame. io.EOF (possibly wrapped) is
// returned verbatim so the caller can distinguish a clean socket close
// mid-frame from a framing error (spec §4.2: "If the socket closes
// mid-frame, emit no partial frame and signal EOF").
func (f *Framer) Next() (Frame, error) {
	var hdr [codec.InboundHeaderSize]byte
	if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return Frame{}, err
	}

	if f.cipher != nil {
		f.cipher.DecodeRecvHeader(hdr[:])
	}

	bodySize, op, ok := codec.DecodeInboundHeader(hdr)
	if bodySize < 0 {
		return Frame{}, wowerr.Wrapf(wowerr.ErrFraming, "declared size < 2 (got header %v)", hdr)
	}

	body := make([]byte, bodySize)
	if bodySize > 0 {
		if _, err := io.ReadFull(f.r, body); err != nil {
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return Frame{}, err
		}
	}

	return Frame{Op: op, Body: body, Unknown: !ok}, nil
}
