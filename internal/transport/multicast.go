package transport

import (
	"context"
	"net"
	"strconv"

	"github.com/dnsscience/dnsclient/internal/framer"
)

// MulticastAddr and MulticastPort are mDNS's fixed rendezvous point
// (RFC 6762 §3).
const (
	MulticastAddr = "224.0.0.251"
	MulticastPort = 5353
)

// multicastConn is the shared mDNS multicast group. Unlike every other
// Conn, it is not scoped to one nameserver: Recv returns whatever
// unsolicited response arrives from any responder on the segment (spec
// §6.4), so the multiplexer cannot assume a 1:1 query/connection
// relationship here the way it can for unicast transports.
type multicastConn struct {
	conn   *net.UDPConn
	framer *framer.Datagram
}

// DialUDPMulticast joins the mDNS multicast group and returns a Conn
// whose Send always targets 224.0.0.251:5353 and whose Recv returns
// whatever answer or unsolicited announcement arrives next.
func DialUDPMulticast() (Conn, error) {
	groupAddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(MulticastAddr, strconv.Itoa(MulticastPort)))
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, groupAddr)
	if err != nil {
		return nil, err
	}
	if err := conn.SetReadBuffer(65536); err != nil {
		_ = conn.Close()
		return nil, err
	}

	// Best-effort: let a second resolver on the same host (systemd-resolved,
	// Avahi, mDNSResponder) bind 5353 too. Not fatal if the platform or
	// kernel refuses it — the join above already succeeded.
	if raw, err := conn.SyscallConn(); err == nil {
		_ = setRawConnOptions(raw)
	}

	return &multicastConn{conn: conn, framer: framer.NewDatagram(udpPacketConn{conn, groupAddr}, 65535)}, nil
}

func (m *multicastConn) Send(ctx context.Context, msg []byte) error {
	return sendWithDeadline(ctx, m.conn, func() error {
		return m.framer.WriteMessage(msg)
	})
}

func (m *multicastConn) Recv(ctx context.Context) ([]byte, error) {
	return recvWithDeadline(ctx, m.conn, m.framer.ReadMessage)
}

func (m *multicastConn) Close() error      { return m.conn.Close() }
func (m *multicastConn) IsMulticast() bool { return true }

// udpPacketConn adapts a *net.UDPConn (bound via ListenMulticastUDP, so it
// has no fixed peer) to the net.Conn shape framer.Datagram expects, always
// writing to dest and reading from any sender.
type udpPacketConn struct {
	*net.UDPConn
	dest *net.UDPAddr
}

func (c udpPacketConn) Write(b []byte) (int, error) { return c.WriteTo(b, c.dest) }
func (c udpPacketConn) Read(b []byte) (int, error) {
	n, _, err := c.ReadFrom(b)
	return n, err
}
