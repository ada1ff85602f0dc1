package transport

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/dnsscience/dnsclient/internal/framer"
)

// ErrNoNameservers indicates PreferredNameserver was handed an empty list.
var ErrNoNameservers = errors.New("transport: no nameservers configured")

// defaultDNSPort is appended to a nameserver entry that names a bare host
// or IP with no port of its own.
const defaultDNSPort = "53"

// udpConn is a connected UDP socket to one nameserver. One datagram
// carries exactly one DNS message (spec §6.1).
type udpConn struct {
	conn   net.Conn
	framer *framer.Datagram
}

// PreferredNameserver picks which of nameservers a UDP transport sends to
// (spec §4.3/§4.4): the first entry that parses as an IPv4 address, else
// the first entry, in list order. Entries may be a bare IP/host or an
// already-combined "host:port".
func PreferredNameserver(nameservers []string) (string, error) {
	if len(nameservers) == 0 {
		return "", ErrNoNameservers
	}
	for _, ns := range nameservers {
		if ip := hostIP(ns); ip != nil && ip.To4() != nil {
			return ns, nil
		}
	}
	return nameservers[0], nil
}

func hostIP(ns string) net.IP {
	host := ns
	if h, _, err := net.SplitHostPort(ns); err == nil {
		host = h
	}
	return net.ParseIP(host)
}

func withDefaultPort(ns string) string {
	if _, _, err := net.SplitHostPort(ns); err == nil {
		return ns
	}
	return net.JoinHostPort(ns, defaultDNSPort)
}

// DialUDP connects to addr ("host:53" or "host:port") over UDP.
func DialUDP(ctx context.Context, addr string) (Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, err
	}
	if err := c.(*net.UDPConn).SetReadBuffer(65536); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &udpConn{conn: c, framer: framer.NewDatagram(c, 65535)}, nil
}

// DialUDPPreferred selects the preferred nameserver out of nameservers
// (spec §4.4's "first IPv4 in the list, else the first entry"), binds a
// local datagram socket to 0.0.0.0:0 if that server is IPv4 or a host
// name (dialed over udp4) and to [::]:0 if it is an IPv6 address, with
// SO_REUSEADDR | SO_REUSEPORT, and routes all sends to it.
func DialUDPPreferred(ctx context.Context, nameservers []string) (Conn, error) {
	preferred, err := PreferredNameserver(nameservers)
	if err != nil {
		return nil, err
	}
	addr := withDefaultPort(preferred)

	network, local := "udp6", &net.UDPAddr{IP: net.IPv6zero, Port: 0}
	if ip := hostIP(preferred); ip == nil || ip.To4() != nil {
		network, local = "udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0}
	}

	d := net.Dialer{
		LocalAddr: local,
		Control: func(_, _ string, c syscall.RawConn) error {
			return setRawConnOptions(c)
		},
	}
	c, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if err := c.(*net.UDPConn).SetReadBuffer(65536); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &udpConn{conn: c, framer: framer.NewDatagram(c, 65535)}, nil
}

func (u *udpConn) Send(ctx context.Context, msg []byte) error {
	return sendWithDeadline(ctx, u.conn, func() error {
		return u.framer.WriteMessage(msg)
	})
}

func (u *udpConn) Recv(ctx context.Context) ([]byte, error) {
	return recvWithDeadline(ctx, u.conn, u.framer.ReadMessage)
}

func (u *udpConn) Close() error      { return u.conn.Close() }
func (u *udpConn) IsMulticast() bool { return false }
