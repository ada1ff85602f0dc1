// Package transport dials the wire-level connections a resolver sends
// queries over: UDP, TCP, DNS-over-TLS, and mDNS multicast (spec §6).
// Each constructor returns a Conn; the multiplexer and client packages
// above never see net.Conn or net.PacketConn directly.
package transport

import "context"

// Conn is one open connection to a nameserver (or, for mDNS, the shared
// multicast group). Framing differs per mode — Send/Recv always operate
// on one complete DNS message, never a raw byte count.
type Conn interface {
	// Send writes one complete, already-encoded DNS message.
	Send(ctx context.Context, msg []byte) error
	// Recv blocks for the next complete DNS message, or until ctx is done.
	Recv(ctx context.Context) ([]byte, error)
	// Close releases the underlying socket.
	Close() error
	// IsMulticast reports whether this Conn represents a shared multicast
	// group rather than a one-to-one connection to a single nameserver
	// (spec §6.4: mDNS responses are unsolicited and not scoped to the ID
	// that requested them in the way unicast responses are).
	IsMulticast() bool
}
