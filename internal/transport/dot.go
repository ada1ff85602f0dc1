package transport

import (
	"context"
	"crypto/tls"

	"github.com/dnsscience/dnsclient/internal/framer"
)

// dotConn is a DNS-over-TLS connection (RFC 7858): TLS 1.2+ on port 853,
// then the same 2-byte length-prefixed framing a plain TCP connection
// uses (spec §6.3).
type dotConn struct {
	conn   *tls.Conn
	framer *framer.Stream
}

// DialDoT dials addr over TLS and wraps it in the stream framer. cfg may
// be nil, in which case a default *tls.Config requiring TLS 1.2+ and the
// system root CAs is used; pass a caller-built cfg to pin a certificate
// or CA — certificate validation policy is an external collaborator's
// concern, not this package's (spec §7).
func DialDoT(ctx context.Context, addr string, cfg *tls.Config) (Conn, error) {
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	d := tls.Dialer{Config: cfg}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	tc := c.(*tls.Conn)
	return &dotConn{conn: tc, framer: framer.NewStream(tc)}, nil
}

func (d *dotConn) Send(ctx context.Context, msg []byte) error {
	return sendWithDeadline(ctx, d.conn, func() error {
		return d.framer.WriteMessage(msg)
	})
}

func (d *dotConn) Recv(ctx context.Context) ([]byte, error) {
	return recvWithDeadline(ctx, d.conn, d.framer.ReadMessage)
}

func (d *dotConn) Close() error      { return d.conn.Close() }
func (d *dotConn) IsMulticast() bool { return false }
