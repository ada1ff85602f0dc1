// Package pool reduces per-message allocation on the receive path: one
// UDP datagram or one TCP/DoT frame is read into a pooled buffer, parsed
// by internal/wire (which copies everything it keeps into its own
// memory — see decoder.go), and the buffer is returned to the pool
// immediately after, whether decode succeeded or failed.
package pool

import "sync"

// Size classes mirroring the three buffer shapes a DNS message actually
// takes: a plain UDP query/response, an EDNS0-sized response, and the
// largest frame a 16-bit length prefix can carry.
const (
	SmallBufferSize  = 512
	MediumBufferSize = 4096
	LargeBufferSize  = 65535
)

var (
	smallPool = sync.Pool{New: func() interface{} {
		buf := make([]byte, SmallBufferSize)
		return &buf
	}}
	mediumPool = sync.Pool{New: func() interface{} {
		buf := make([]byte, MediumBufferSize)
		return &buf
	}}
	largePool = sync.Pool{New: func() interface{} {
		buf := make([]byte, LargeBufferSize)
		return &buf
	}}
)

// GetBuffer returns a buffer of at least size bytes (len == size) drawn
// from the smallest size class that fits, falling back to a fresh
// allocation for anything larger than LargeBufferSize.
func GetBuffer(size int) []byte {
	switch {
	case size <= SmallBufferSize:
		bufPtr := smallPool.Get().(*[]byte)
		return (*bufPtr)[:size]
	case size <= MediumBufferSize:
		bufPtr := mediumPool.Get().(*[]byte)
		return (*bufPtr)[:size]
	case size <= LargeBufferSize:
		bufPtr := largePool.Get().(*[]byte)
		return (*bufPtr)[:size]
	default:
		return make([]byte, size)
	}
}

// PutBuffer returns buf to the pool matching its capacity. Buffers whose
// capacity doesn't match one of the three size classes (e.g. the
// make([]byte, size) fallback above) are simply dropped.
func PutBuffer(buf []byte) {
	switch cap(buf) {
	case SmallBufferSize:
		b := buf[:SmallBufferSize]
		smallPool.Put(&b)
	case MediumBufferSize:
		b := buf[:MediumBufferSize]
		mediumPool.Put(&b)
	case LargeBufferSize:
		b := buf[:LargeBufferSize]
		largePool.Put(&b)
	}
}
