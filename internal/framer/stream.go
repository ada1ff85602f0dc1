package framer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dnsscience/dnsclient/internal/pool"
)

// Stream frames messages on a byte stream (TCP, DoT) with the 2-byte
// big-endian length prefix RFC 1035 §4.2.2 specifies, the same framing
// the teacher's DoT listener reads on the accept side.
type Stream struct {
	r io.Reader
	w io.Writer
}

// NewStream wraps rw (already dialed/handshaked) as a length-prefixed
// Framer.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{r: bufio.NewReader(rw), w: rw}
}

func (s *Stream) ReadMessage() ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(s.r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	msg := pool.GetBuffer(int(n))
	if _, err := io.ReadFull(s.r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Stream) WriteMessage(msg []byte) error {
	if len(msg) > maxMessageSize {
		return fmt.Errorf("framer: message of %d bytes exceeds %d-byte stream frame limit", len(msg), maxMessageSize)
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(msg)))
	if _, err := s.w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := s.w.Write(msg)
	return err
}
