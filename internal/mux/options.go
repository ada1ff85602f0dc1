package mux

import (
	"time"

	"github.com/dnsscience/dnsclient/internal/cookie"
	"github.com/dnsscience/dnsclient/internal/wire"
)

// queryConfig collects what QueryOptions may adjust about one SendQuery
// call.
type queryConfig struct {
	timeout    time.Duration
	randomID   bool
	extraFlags wire.Flags
	cookies    *cookie.Client
	server     string
}

// QueryOption customizes one SendQuery call.
type QueryOption func(*queryConfig)

// WithTimeout overrides the multiplexer's default per-query timeout.
func WithTimeout(d time.Duration) QueryOption {
	return func(c *queryConfig) { c.timeout = d }
}

// WithRandomID additionally randomizes which free ID is chosen (rather
// than always taking the allocator's next sequential value), to make ID
// guessing harder for an off-path attacker. The allocator still only
// hands out IDs that are actually free.
func WithRandomID() QueryOption {
	return func(c *queryConfig) { c.randomID = true }
}

// WithExtraFlags ORs additional bits into the outgoing header's Flags
// (e.g. a caller that wants checking disabled).
func WithExtraFlags(f wire.Flags) QueryOption {
	return func(c *queryConfig) { c.extraFlags |= f }
}

// WithCookie attaches a DNS Cookie (RFC 7873) EDNS0 option for server,
// tracked across calls by cookies.
func WithCookie(cookies *cookie.Client, server string) QueryOption {
	return func(c *queryConfig) {
		c.cookies = cookies
		c.server = server
	}
}
