// Package randx generates the cryptographically random values the
// multiplexer needs when a caller asks for ID randomization on top of
// the allocator's own collision-free sequencing (spec §5.2).
package randx

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// TransactionID returns a cryptographically random 16-bit value. Never
// use math/rand here — a predictable transaction ID is exactly what lets
// an off-path attacker's spoofed response get accepted.
func TransactionID() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("randx: crypto/rand failed: %v", err))
	}
	return binary.BigEndian.Uint16(buf[:])
}
