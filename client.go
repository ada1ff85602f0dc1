// Package dnsclient is a client-side DNS resolver library: it builds
// query messages, sends them to a nameserver over UDP, TCP, DNS-over-TLS,
// or mDNS multicast, and surfaces the parsed response. It is not a
// recursive or caching resolver, a zone file parser, or a DNSSEC
// validator — callers needing those build them on top.
package dnsclient

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/dnsscience/dnsclient/internal/cookie"
	"github.com/dnsscience/dnsclient/internal/mux"
	"github.com/dnsscience/dnsclient/internal/transport"
	"github.com/dnsscience/dnsclient/internal/wire"
	"github.com/dnsscience/dnsclient/internal/worker"
)

// Client sends DNS queries over one open transport and matches their
// responses. It wraps internal/mux.Multiplexer so callers never touch
// the wire codec, framer, or transport packages directly.
type Client struct {
	mux         *mux.Multiplexer
	multicast   bool
	cookies     *cookie.Client
	serverLabel string
}

// Option configures a Client at construction time.
type Option func(*clientConfig)

type clientConfig struct {
	defaultTimeout time.Duration
	rateLimiter    *mux.RateLimiter
	enableCookies  bool
}

// WithDefaultTimeout overrides the 30-second default per-query timeout
// (spec §5, "Timeouts").
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.defaultTimeout = d }
}

// WithRateLimiter throttles outbound queries to at most qps per second,
// with an initial burst allowance.
func WithRateLimiter(qps float64, burst int) Option {
	return func(c *clientConfig) { c.rateLimiter = mux.NewRateLimiter(qps, burst) }
}

// WithCookies enables RFC 7873 DNS Cookies on every query this Client
// sends, tracked per nameserver address.
func WithCookies() Option {
	return func(c *clientConfig) { c.enableCookies = true }
}

func newClient(conn transport.Conn, server string, opts []Option) (*Client, error) {
	cfg := clientConfig{defaultTimeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	muxOpts := []mux.Option{mux.WithDefaultTimeout(cfg.defaultTimeout)}
	if cfg.rateLimiter != nil {
		muxOpts = append(muxOpts, mux.WithRateLimiter(cfg.rateLimiter))
	}

	c := &Client{
		mux:         mux.New(conn, muxOpts...),
		multicast:   conn.IsMulticast(),
		serverLabel: server,
	}
	if cfg.enableCookies {
		cookies, err := cookie.NewClient()
		if err != nil {
			_ = c.mux.Close()
			return nil, err
		}
		c.cookies = cookies
	}
	return c, nil
}

// DialUDP opens a connected UDP channel to the preferred nameserver among
// nameservers — the first IPv4 entry, else the first entry (spec §4.3/
// §4.4) — binding the local socket to the matching address family with
// SO_REUSEADDR | SO_REUSEPORT.
func DialUDP(ctx context.Context, nameservers []string, opts ...Option) (*Client, error) {
	preferred, err := transport.PreferredNameserver(nameservers)
	if err != nil {
		return nil, err
	}
	conn, err := transport.DialUDPPreferred(ctx, nameservers)
	if err != nil {
		return nil, err
	}
	return newClient(conn, preferred, opts)
}

// DialTCP opens a length-prefixed TCP channel to nameserver.
func DialTCP(ctx context.Context, nameserver string, opts ...Option) (*Client, error) {
	conn, err := transport.DialTCP(ctx, nameserver)
	if err != nil {
		return nil, err
	}
	return newClient(conn, nameserver, opts)
}

// DialDoT opens a DNS-over-TLS channel to nameserver (port 853 by
// convention). tlsConfig may be nil to use the package default
// (TLS 1.2+, system root CAs) — certificate validation policy beyond
// that is an external collaborator's concern (spec §7).
func DialDoT(ctx context.Context, nameserver string, tlsConfig *tls.Config, opts ...Option) (*Client, error) {
	conn, err := transport.DialDoT(ctx, nameserver, tlsConfig)
	if err != nil {
		return nil, err
	}
	return newClient(conn, nameserver, opts)
}

// DialMulticast joins the mDNS group (224.0.0.251:5353) and returns a
// Client whose queries leave recursion-desired unset unless the caller
// passes it in Query's extraFlags (spec §4.4), and whose responses may arrive from any responder on the
// segment, not just the query's own "peer".
func DialMulticast(opts ...Option) (*Client, error) {
	conn, err := transport.DialUDPMulticast()
	if err != nil {
		return nil, err
	}
	return newClient(conn, transport.MulticastAddr, opts)
}

// Close shuts down the underlying transport and fails every in-flight
// query with mux.ErrClosed.
func (c *Client) Close() error {
	return c.mux.Close()
}

// CancelAll fails every currently in-flight query with mux.ErrCanceled
// without closing the transport (spec §4.5, "cancel_all").
func (c *Client) CancelAll() {
	c.mux.CancelAll()
}

// Query sends a single question for name/qtype and returns the raw
// response Message: header, question echo, answers, authorities, and
// additionals (spec §6.3). extraFlags are OR'd onto the outgoing header
// beyond the recursion-desired bit Query sets automatically (cleared
// for a multicast Client per spec §4.4).
func (c *Client) Query(ctx context.Context, name string, qtype wire.RRType, extraFlags wire.Flags) (*wire.Message, error) {
	q, err := wire.NewQuestion(name, qtype)
	if err != nil {
		return nil, err
	}

	flags := extraFlags
	if !c.multicast {
		flags |= wire.FlagRecursionDesired
	}

	query := &wire.Message{Questions: []wire.Question{q}}

	queryOpts := []mux.QueryOption{mux.WithExtraFlags(flags)}
	if c.cookies != nil {
		queryOpts = append(queryOpts, mux.WithCookie(c.cookies, c.serverLabel))
	}

	return c.mux.SendQuery(ctx, query, queryOpts...)
}

// QueryA resolves name's IPv4 addresses.
func (c *Client) QueryA(ctx context.Context, name string) ([]net.IP, error) {
	msg, err := c.Query(ctx, name, wire.TypeA, 0)
	if err != nil {
		return nil, err
	}
	var addrs []net.IP
	for _, rr := range msg.Answers {
		if a, ok := rr.Data.(wire.A); ok {
			addrs = append(addrs, a.Addr)
		}
	}
	if len(addrs) == 0 {
		return nil, ErrNoAnswers
	}
	return addrs, nil
}

// QueryAAAA resolves name's IPv6 addresses.
func (c *Client) QueryAAAA(ctx context.Context, name string) ([]net.IP, error) {
	msg, err := c.Query(ctx, name, wire.TypeAAAA, 0)
	if err != nil {
		return nil, err
	}
	var addrs []net.IP
	for _, rr := range msg.Answers {
		if a, ok := rr.Data.(wire.AAAA); ok {
			addrs = append(addrs, a.Addr)
		}
	}
	if len(addrs) == 0 {
		return nil, ErrNoAnswers
	}
	return addrs, nil
}

// QueryManyResult pairs one name with its Query outcome, for QueryMany.
type QueryManyResult struct {
	Name string
	Msg  *wire.Message
	Err  error
}

// QueryMany resolves every name for qtype concurrently, bounded by concurrency
// simultaneous in-flight queries (a non-positive concurrency defaults to
// runtime.NumCPU() worth of workers), so handing the client a large name
// list doesn't spawn one goroutine per name. It returns one QueryManyResult
// per input name, in the same order as names. A ctx cancellation aborts
// results still queued or in flight, each reported with ctx.Err().
func (c *Client) QueryMany(ctx context.Context, names []string, qtype wire.RRType, concurrency int) []QueryManyResult {
	results := make([]QueryManyResult, len(names))
	pool := worker.NewPool(worker.Config{Workers: concurrency})
	defer pool.Close()

	var wg sync.WaitGroup
	wg.Add(len(names))
	for i, name := range names {
		i, name := i, name
		go func() {
			defer wg.Done()
			ran := false
			err := pool.Submit(ctx, worker.JobFunc(func(jobCtx context.Context) error {
				ran = true
				msg, qerr := c.Query(jobCtx, name, qtype, 0)
				results[i] = QueryManyResult{Name: name, Msg: msg, Err: qerr}
				return qerr
			}))
			if !ran && err != nil {
				results[i] = QueryManyResult{Name: name, Err: err}
			}
		}()
	}
	wg.Wait()
	return results
}

// QuerySRV resolves name's SRV targets (spec §6.3 typed convenience
// queries).
func (c *Client) QuerySRV(ctx context.Context, name string) ([]wire.SRV, error) {
	msg, err := c.Query(ctx, name, wire.TypeSRV, 0)
	if err != nil {
		return nil, err
	}
	var records []wire.SRV
	for _, rr := range msg.Answers {
		if s, ok := rr.Data.(wire.SRV); ok {
			records = append(records, s)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoAnswers
	}
	return records, nil
}
