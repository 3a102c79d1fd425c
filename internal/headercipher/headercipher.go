// Package headercipher implements the symmetric 40-byte-key streaming mask
// applied to inbound and outbound frame headers once a session key is
// installed (spec §4.3, §6). Grounded on the stream-cipher shape in
// internal/shadowsocks/cipher.go's StreamCipher (XORKeyStream over two
// independent directions), but this is NOT an AEAD/CFB cipher — it is the
// bespoke byte-at-a-time rolling XOR+add the world-server protocol uses,
// so it is hand-rolled rather than built on crypto/cipher.
package headercipher

// KeySize is the fixed length of the session key this cipher is keyed with.
const KeySize = 40

// direction holds one (i, j) rolling-index pair and persists across packets.
type direction struct {
	key      [KeySize]byte
	i, j     uint8
	installed bool
}

func (d *direction) encodeByte(b byte) byte {
	if !d.installed {
		return b
	}
	t := (b ^ d.key[d.i]) + d.j
	d.i = (d.i + 1) % KeySize
	d.j = t
	return t
}

func (d *direction) decodeByte(b byte) byte {
	if !d.installed {
		return b
	}
	t := (b - d.j) ^ d.key[d.i]
	d.i = (d.i + 1) % KeySize
	d.j = b
	return t
}

// HeaderCipher masks the 4-byte inbound header and 6-byte outbound header.
// It is stateful: Install is idempotent within a session, and the two
// directions (send/recv) keep independent (i, j) pairs that persist across
// packets, per spec §4.3.
type HeaderCipher struct {
	send direction
	recv direction
}

// New returns a HeaderCipher with no session key installed; both directions
// are identity transforms (no-ops) until Install is called.
func New() *HeaderCipher {
	return &HeaderCipher{}
}

// Install sets the 40-byte session key. Calling it more than once with the
// same key is a no-op beyond resetting the rolling indices, matching the
// spec's "idempotent within a session" contract.
func (c *HeaderCipher) Install(sessionKey [KeySize]byte) {
	c.send = direction{key: sessionKey, installed: true}
	c.recv = direction{key: sessionKey, installed: true}
}

// Installed reports whether a session key has been installed yet.
func (c *HeaderCipher) Installed() bool {
	return c.send.installed
}

// EncodeSendHeader mutates hdr (the 6-byte outbound header) in place. A
// no-op before Install.
func (c *HeaderCipher) EncodeSendHeader(hdr []byte) {
	for i := range hdr {
		hdr[i] = c.send.encodeByte(hdr[i])
	}
}

// DecodeRecvHeader mutates hdr (the 4-byte inbound header) in place. A
// no-op before Install.
func (c *HeaderCipher) DecodeRecvHeader(hdr []byte) {
	for i := range hdr {
		hdr[i] = c.recv.decodeByte(hdr[i])
	}
}
