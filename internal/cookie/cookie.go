package cookie

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/dchest/siphash"

	"github.com/dnsscience/dnsclient/internal/wire"
)

// RFC 7873: Domain Name System (DNS) Cookies.
//
// On the client side a cookie is generated once per nameserver and resent
// unchanged on every query to that nameserver; whatever server cookie
// comes back is cached and echoed on the next query, per RFC 7873 §4.
// Verifying the server's signature over the cookie is the server's job —
// the client only needs to carry it faithfully.
const (
	optCodeCookie    = 10
	clientCookieSize = 8
	typeOPT          = 41
)

type state struct {
	clientCookie [8]byte
	serverCookie []byte
}

// Client tracks cookie state per nameserver address queried so far.
type Client struct {
	mu       sync.Mutex
	secret   [16]byte
	byServer map[string]*state
}

// NewClient creates a cookie-tracking client with a fresh random secret
// used to derive per-server client cookies.
func NewClient() (*Client, error) {
	c := &Client{byServer: make(map[string]*state)}
	if _, err := rand.Read(c.secret[:]); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) stateFor(server string) *state {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.byServer[server]
	if !ok {
		st = &state{clientCookie: c.deriveClientCookie(server)}
		c.byServer[server] = st
	}
	return st
}

// deriveClientCookie derives a stable 8-byte client cookie for server from
// the client's secret, so the same cookie is presented on every query to
// that server without needing to persist per-server state across process
// restarts.
func (c *Client) deriveClientCookie(server string) [8]byte {
	h := siphash.New(c.secret[:])
	h.Write([]byte(server))
	var cc [8]byte
	binary.LittleEndian.PutUint64(cc[:], h.Sum64())
	return cc
}

// Update records the server cookie echoed back by server, so it is resent
// on the next query to that same server. A short or oversized cookie
// (outside the 8-32 byte range RFC 7873 allows) is ignored rather than
// cached.
func (c *Client) Update(server string, serverCookie []byte) {
	if len(serverCookie) < clientCookieSize || len(serverCookie) > 32 {
		return
	}
	st := c.stateFor(server)
	c.mu.Lock()
	st.serverCookie = append([]byte(nil), serverCookie...)
	c.mu.Unlock()
}

// OPTRecord builds the EDNS0 OPT pseudo-record carrying the current
// COOKIE option for server. udpPayloadSize is advertised in the class
// field per RFC 6891; the wire package has no dedicated OPT rdata type
// (it isn't one of the resolver's supported answer types), so the option
// bytes ride as wire.Opaque.
func (c *Client) OPTRecord(server string, udpPayloadSize uint16) wire.Record {
	st := c.stateFor(server)
	c.mu.Lock()
	serverCookie := append([]byte(nil), st.serverCookie...)
	clientCookie := st.clientCookie
	c.mu.Unlock()

	data := make([]byte, clientCookieSize+len(serverCookie))
	copy(data, clientCookie[:])
	copy(data[clientCookieSize:], serverCookie)

	opt := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(opt[0:2], optCodeCookie)
	binary.BigEndian.PutUint16(opt[2:4], uint16(len(data)))
	copy(opt[4:], data)

	return wire.Record{
		Header: wire.RRHeader{Name: ".", Type: typeOPT, Class: wire.Class(udpPayloadSize)},
		Data:   wire.Opaque{RRType: typeOPT, Raw: opt},
	}
}

// ParseCookieOption scans a raw OPT rdata blob for a COOKIE option (code
// 10) and splits it into its client and server cookie halves.
func ParseCookieOption(optData []byte) (clientCookie [8]byte, serverCookie []byte, err error) {
	for len(optData) >= 4 {
		code := binary.BigEndian.Uint16(optData[0:2])
		length := binary.BigEndian.Uint16(optData[2:4])
		optData = optData[4:]
		if int(length) > len(optData) {
			return clientCookie, nil, ErrMalformedOption
		}
		value := optData[:length]
		if code == optCodeCookie {
			if len(value) < clientCookieSize {
				return clientCookie, nil, ErrMalformedOption
			}
			copy(clientCookie[:], value[:clientCookieSize])
			if len(value) > clientCookieSize {
				serverCookie = append([]byte(nil), value[clientCookieSize:]...)
			}
			return clientCookie, serverCookie, nil
		}
		optData = optData[length:]
	}
	return clientCookie, nil, ErrCookieOptionNotFound
}
