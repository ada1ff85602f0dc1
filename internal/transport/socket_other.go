//go:build !linux && !darwin && !windows

package transport

import "syscall"

// setRawConnOptions is a no-op on platforms without a known SO_REUSEADDR/
// SO_REUSEPORT mapping; the multicast listener still works, it just can't
// guarantee coexistence with another local mDNS responder on the same port.
func setRawConnOptions(c syscall.RawConn) error {
	return nil
}
