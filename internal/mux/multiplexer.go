// Package mux matches outgoing DNS queries to their responses over a
// single transport.Conn: it allocates the 16-bit transaction ID, tracks
// one pendingQuery per in-flight request, and guarantees each resolves
// exactly once — by a matching response, a per-query timeout, a
// CancelAll, or the underlying transport failing (spec §5).
package mux

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dnsscience/dnsclient/internal/cookie"
	"github.com/dnsscience/dnsclient/internal/pool"
	"github.com/dnsscience/dnsclient/internal/randx"
	"github.com/dnsscience/dnsclient/internal/transport"
	"github.com/dnsscience/dnsclient/internal/wire"
)

// Multiplexer owns one transport.Conn and every query currently
// in flight on it.
type Multiplexer struct {
	conn           transport.Conn
	defaultTimeout time.Duration
	limiter        *RateLimiter

	mu      sync.Mutex
	pending map[uint16]*pendingQuery
	alloc   idAllocator
	closed  bool

	closeOnce sync.Once
	recvDone  chan struct{}
}

// Option configures a Multiplexer at construction time.
type Option func(*Multiplexer)

// WithDefaultTimeout sets the per-query timeout used when a SendQuery
// call doesn't override it with WithTimeout. The zero value means 5
// seconds.
func WithDefaultTimeout(d time.Duration) Option {
	return func(m *Multiplexer) {
		if d != 0 {
			m.defaultTimeout = d
		}
	}
}

// WithRateLimiter attaches a client-side query-rate limiter.
func WithRateLimiter(r *RateLimiter) Option {
	return func(m *Multiplexer) { m.limiter = r }
}

// New starts a Multiplexer reading responses from conn in the
// background. The caller owns conn's lifetime via Close.
func New(conn transport.Conn, opts ...Option) *Multiplexer {
	m := &Multiplexer{
		conn:           conn,
		defaultTimeout: 5 * time.Second,
		pending:        make(map[uint16]*pendingQuery),
		recvDone:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.recvLoop()
	return m
}

// SendQuery encodes query, assigns it a fresh transaction ID, sends it on
// the underlying Conn, and blocks until a matching response arrives, the
// per-query timeout fires, CancelAll runs, ctx is done, or the transport
// fails. query.Header.ID is overwritten; query.Header.QDCount and the
// rest are recomputed by wire.Encode regardless of what's already there.
func (m *Multiplexer) SendQuery(ctx context.Context, query *wire.Message, opts ...QueryOption) (*wire.Message, error) {
	cfg := queryConfig{timeout: m.defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := m.limiter.wait(ctx); err != nil {
		return nil, err
	}

	id, pq, err := m.register(cfg.randomID)
	if err != nil {
		return nil, err
	}

	query.Header.ID = id
	query.Header.Flags |= cfg.extraFlags
	if cfg.cookies != nil {
		query.Additionals = append(query.Additionals, cfg.cookies.OPTRecord(cfg.server, 4096))
	}

	encoded, err := wire.Encode(query)
	if err != nil {
		m.abort(id, pq)
		return nil, err
	}

	start := time.Now()
	pq.timer = time.AfterFunc(cfg.timeout, func() {
		if _, ok := m.remove(id); ok {
			pq.complete(nil, ErrTimeout)
			recordOutcome("timeout", start)
		}
	})

	if err := m.conn.Send(ctx, encoded); err != nil {
		m.abort(id, pq)
		recordOutcome("send_error", start)
		return nil, err
	}

	select {
	case <-pq.done:
	case <-ctx.Done():
		m.abort(id, pq)
		recordOutcome("context_done", start)
		return nil, ctx.Err()
	}

	if pq.err != nil {
		return nil, pq.err
	}

	recordOutcome("success", start)
	if cfg.cookies != nil {
		if sc := serverCookieIn(pq.result); sc != nil {
			cfg.cookies.Update(cfg.server, sc)
		}
	}
	return pq.result, nil
}

// register allocates an ID and inserts its pendingQuery atomically with
// respect to the receive loop, which is the invariant that makes "ID
// allocated" and "response can be matched" happen as one step.
func (m *Multiplexer) register(randomID bool) (uint16, *pendingQuery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, nil, ErrClosed
	}
	if randomID {
		m.alloc.next = randx.TransactionID()
	}
	id, ok := m.alloc.allocate(m.pending)
	if !ok {
		return 0, nil, ErrResourceExhausted
	}
	pq := newPendingQuery(id)
	m.pending[id] = pq
	inFlightGauge.Inc()
	return id, pq, nil
}

// remove deletes id from the pending map if still present, returning the
// pendingQuery that was there. The bool is the guard that keeps a timeout
// and a same-instant response from both thinking they "won".
func (m *Multiplexer) remove(id uint16) (*pendingQuery, bool) {
	m.mu.Lock()
	pq, ok := m.pending[id]
	if ok {
		delete(m.pending, id)
	}
	m.mu.Unlock()
	if ok {
		inFlightGauge.Dec()
	}
	return pq, ok
}

func (m *Multiplexer) abort(id uint16, pq *pendingQuery) {
	m.remove(id)
	if pq.timer != nil {
		pq.timer.Stop()
	}
}

// CancelAll fails every currently in-flight query with ErrCanceled and
// drains the pending map, without closing the underlying Conn.
func (m *Multiplexer) CancelAll() {
	m.failAll(ErrCanceled, "canceled")
}

func (m *Multiplexer) failAll(err error, outcome string) {
	m.mu.Lock()
	drained := m.pending
	m.pending = make(map[uint16]*pendingQuery)
	m.mu.Unlock()

	now := time.Now()
	for _, pq := range drained {
		if pq.timer != nil {
			pq.timer.Stop()
		}
		pq.complete(nil, err)
		inFlightGauge.Dec()
		recordOutcome(outcome, now)
	}
}

// Close stops the receive loop, closes the underlying Conn, and fails
// every in-flight query with ErrClosed. It returns the Conn's close error.
func (m *Multiplexer) Close() error {
	var closeErr error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		closeErr = m.conn.Close()
		<-m.recvDone
		m.failAll(ErrClosed, "closed")
	})
	return closeErr
}

func (m *Multiplexer) recvLoop() {
	defer close(m.recvDone)
	for {
		raw, err := m.conn.Recv(context.Background())
		if err != nil {
			m.mu.Lock()
			closing := m.closed
			m.closed = true
			m.mu.Unlock()
			// A Recv error caused by Close is not a transport failure:
			// Close itself fails the in-flight queries with ErrClosed.
			if !closing {
				m.failAll(err, "transport_error")
			}
			return
		}

		msg, err := wire.Decode(raw)
		// wire.Decode copies everything it keeps out of raw, so the
		// receive buffer can go back to the pool the moment it returns,
		// whether decoding succeeded or not.
		pool.PutBuffer(raw)
		if err != nil {
			var msgErr *wire.MessageError
			if errors.As(err, &msgErr) {
				m.deliver(msgErr.Header.ID, nil, msgErr)
			}
			// A header-less decode failure can't be attributed to any
			// query; there is nothing to do but drop the packet.
			continue
		}
		if !msg.Header.Flags.Response() {
			// We are a client: a packet with QR=0 is someone else's
			// query, not an answer to ours, even if its ID collides.
			queriesTotal.WithLabelValues("unmatched").Inc()
			continue
		}
		m.deliver(msg.Header.ID, msg, nil)
	}
}

func (m *Multiplexer) deliver(id uint16, msg *wire.Message, err error) {
	pq, ok := m.remove(id)
	if !ok {
		queriesTotal.WithLabelValues("unmatched").Inc()
		return
	}
	if pq.timer != nil {
		pq.timer.Stop()
	}
	pq.complete(msg, err)
}

// edns0OPTType is the EDNS0 pseudo-record type (RFC 6891); the wire
// package has no dedicated constant for it since OPT isn't one of the
// resolver's supported answer types.
const edns0OPTType wire.RRType = 41

// serverCookieIn scans msg's additional records for an EDNS0 OPT record
// carrying a COOKIE option and returns its server cookie half (the bytes
// after the 8-byte client cookie), or nil if msg has none.
func serverCookieIn(msg *wire.Message) []byte {
	if msg == nil {
		return nil
	}
	for _, rr := range msg.Additionals {
		if rr.Header.Type != edns0OPTType {
			continue
		}
		opaque, ok := rr.Data.(wire.Opaque)
		if !ok {
			continue
		}
		_, serverCookie, err := cookie.ParseCookieOption(opaque.Raw)
		if err != nil {
			continue
		}
		return serverCookie
	}
	return nil
}
