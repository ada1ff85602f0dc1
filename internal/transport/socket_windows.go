//go:build windows

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// setSocketOptions enables SO_REUSEADDR, the only port-sharing option
// Windows exposes (it has no SO_REUSEPORT); on Windows SO_REUSEADDR lets
// multiple processes bind the same port, unlike its POSIX TIME_WAIT-reuse
// meaning.
func setSocketOptions(fd uintptr) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("transport: SO_REUSEADDR: %w", err)
	}
	return nil
}

func setRawConnOptions(c syscall.RawConn) error {
	var sockoptErr error
	if err := c.Control(func(fd uintptr) { sockoptErr = setSocketOptions(fd) }); err != nil {
		return fmt.Errorf("transport: raw conn control: %w", err)
	}
	return sockoptErr
}
