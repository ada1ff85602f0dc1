// Package framer turns a byte stream into discrete DNS messages and back,
// independent of the transport carrying them (spec §5). A datagram
// transport (UDP, mDNS) already delivers one message per read and needs
// no framing; a stream transport (TCP, DoT) prefixes every message with a
// 2-byte big-endian length.
package framer

// Framer reads and writes whole DNS messages on top of an underlying
// byte stream or datagram socket.
type Framer interface {
	// ReadMessage returns the next complete message's raw bytes.
	ReadMessage() ([]byte, error)
	// WriteMessage writes one complete message, framed as this Framer's
	// transport requires.
	WriteMessage(msg []byte) error
}

// maxMessageSize is the largest message a length-prefixed stream framer
// will allocate for, matching the 16-bit length field that carries it.
const maxMessageSize = 65535
