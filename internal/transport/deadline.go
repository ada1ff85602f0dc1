package transport

import (
	"context"
	"time"
)

// deadlineSetter is satisfied by every net.Conn and net.PacketConn.
type deadlineSetter interface {
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// sendWithDeadline runs send, propagating ctx's deadline onto c and
// unblocking send early if ctx is canceled before it returns (net.Conn has
// no native context support, so an expired deadline is how it's done).
func sendWithDeadline(ctx context.Context, c deadlineSetter, send func() error) error {
	if dl, ok := ctx.Deadline(); ok {
		c.SetWriteDeadline(dl)
		defer c.SetWriteDeadline(time.Time{})
	}

	done := make(chan error, 1)
	go func() { done <- send() }()

	select {
	case <-ctx.Done():
		c.SetWriteDeadline(time.Now())
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// recvWithDeadline is sendWithDeadline's read-side counterpart.
func recvWithDeadline(ctx context.Context, c deadlineSetter, recv func() ([]byte, error)) ([]byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		c.SetReadDeadline(dl)
		defer c.SetReadDeadline(time.Time{})
	}

	type result struct {
		msg []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		msg, err := recv()
		ch <- result{msg, err}
	}()

	select {
	case <-ctx.Done():
		c.SetReadDeadline(time.Now())
		<-ch
		return nil, ctx.Err()
	case r := <-ch:
		return r.msg, r.err
	}
}
