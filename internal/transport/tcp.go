package transport

import (
	"context"
	"net"

	"github.com/dnsscience/dnsclient/internal/framer"
)

// tcpConn is a length-prefixed stream connection to one nameserver
// (spec §6.2). DoT does not use it; see dotConn.
type tcpConn struct {
	conn   net.Conn
	framer *framer.Stream
}

// DialTCP connects to addr over TCP.
func DialTCP(ctx context.Context, addr string) (Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &tcpConn{conn: c, framer: framer.NewStream(c)}, nil
}

func (t *tcpConn) Send(ctx context.Context, msg []byte) error {
	return sendWithDeadline(ctx, t.conn, func() error {
		return t.framer.WriteMessage(msg)
	})
}

func (t *tcpConn) Recv(ctx context.Context) ([]byte, error) {
	return recvWithDeadline(ctx, t.conn, t.framer.ReadMessage)
}

func (t *tcpConn) Close() error      { return t.conn.Close() }
func (t *tcpConn) IsMulticast() bool { return false }
