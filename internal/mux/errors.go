package mux

import "errors"

var (
	// ErrTimeout indicates a query's per-query timer fired before any
	// matching response arrived.
	ErrTimeout = errors.New("mux: query timed out")

	// ErrCanceled indicates CancelAll drained this query before it
	// completed on its own.
	ErrCanceled = errors.New("mux: query canceled")

	// ErrResourceExhausted indicates every 16-bit transaction ID is
	// currently assigned to an in-flight query.
	ErrResourceExhausted = errors.New("mux: no transaction ID available")

	// ErrClosed indicates the multiplexer is closed: a send attempted after
	// Close or after a transport failure, or an in-flight query that Close
	// drained.
	ErrClosed = errors.New("mux: multiplexer closed")
)
