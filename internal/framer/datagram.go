package framer

import (
	"net"

	"github.com/dnsscience/dnsclient/internal/pool"
)

// Datagram frames messages 1:1 with the underlying packet reads/writes:
// one ReadFrom/WriteTo call carries exactly one message, no length
// prefix needed. Used for UDP and mDNS.
type Datagram struct {
	conn net.Conn
	buf  []byte
}

// NewDatagram wraps conn (already connected via net.Dial/DialUDP) as a
// Framer. bufSize bounds the largest datagram it will read; 65535 covers
// the largest possible UDP payload.
func NewDatagram(conn net.Conn, bufSize int) *Datagram {
	if bufSize <= 0 {
		bufSize = maxMessageSize
	}
	return &Datagram{conn: conn, buf: make([]byte, bufSize)}
}

// ReadMessage reads one datagram into a pooled buffer sized to match.
// The caller owns the returned slice and is responsible for handing it
// back via pool.PutBuffer once done with it (internal/mux does this
// right after internal/wire.Decode, which never retains a reference
// into its input).
func (d *Datagram) ReadMessage() ([]byte, error) {
	n, err := d.conn.Read(d.buf)
	if err != nil {
		return nil, err
	}
	msg := pool.GetBuffer(n)
	copy(msg, d.buf[:n])
	return msg, nil
}

func (d *Datagram) WriteMessage(msg []byte) error {
	_, err := d.conn.Write(msg)
	return err
}
