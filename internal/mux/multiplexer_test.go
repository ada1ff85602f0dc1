package mux

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dnsscience/dnsclient/internal/wire"
)

// fakeConn is an in-memory transport.Conn: Send hands the encoded message
// to onSend (which can synthesize and push a reply via inbound), and Recv
// reads from inbound. It lets multiplexer tests drive recvLoop without a
// real socket.
type fakeConn struct {
	mu       sync.Mutex
	closed   bool
	inbound  chan []byte
	onSend   func(msg []byte, reply chan<- []byte)
	sendErr  error
	closeErr error
	recvErr  error
}

// failRecv makes the next Recv call (and every one after it) return err,
// simulating a spontaneous transport failure rather than a caller-driven
// Close.
func (c *fakeConn) failRecv(err error) {
	c.mu.Lock()
	c.recvErr = err
	c.mu.Unlock()
}

func newFakeConn(onSend func(msg []byte, reply chan<- []byte)) *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 8), onSend: onSend}
}

func (c *fakeConn) Send(ctx context.Context, msg []byte) error {
	c.mu.Lock()
	closed := c.closed
	sendErr := c.sendErr
	c.mu.Unlock()
	if closed {
		return errors.New("fakeConn: send on closed conn")
	}
	if sendErr != nil {
		return sendErr
	}
	if c.onSend != nil {
		c.onSend(msg, c.inbound)
	}
	return nil
}

func (c *fakeConn) Recv(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	recvErr := c.recvErr
	c.mu.Unlock()
	if recvErr != nil {
		return nil, recvErr
	}
	select {
	case b, ok := <-c.inbound:
		if !ok {
			return nil, errors.New("fakeConn: closed")
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.inbound)
	}
	return c.closeErr
}

func (c *fakeConn) IsMulticast() bool { return false }

func echoReply(msg []byte, inbound chan<- []byte) {
	m, err := wire.Decode(msg)
	if err != nil {
		return
	}
	resp := &wire.Message{
		Header: wire.Header{ID: m.Header.ID, Flags: wire.FlagResponse},
	}
	encoded, err := wire.Encode(resp)
	if err != nil {
		return
	}
	inbound <- encoded
}

func testQuery() *wire.Message {
	return &wire.Message{
		Questions: []wire.Question{{Name: "example.com.", Type: wire.TypeA, Class: wire.ClassINET}},
	}
}

func TestSendQuerySuccess(t *testing.T) {
	conn := newFakeConn(echoReply)
	m := New(conn)
	defer m.Close()

	resp, err := m.SendQuery(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("SendQuery: %v", err)
	}
	if resp == nil {
		t.Fatal("resp is nil")
	}
}

func TestSendQueryTimeout(t *testing.T) {
	conn := newFakeConn(func(msg []byte, inbound chan<- []byte) {})
	m := New(conn)
	defer m.Close()

	_, err := m.SendQuery(context.Background(), testQuery(), WithTimeout(20*time.Millisecond))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestSendQueryContextCanceled(t *testing.T) {
	conn := newFakeConn(func(msg []byte, inbound chan<- []byte) {})
	m := New(conn)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var err error
	go func() {
		_, err = m.SendQuery(ctx, testQuery(), WithTimeout(time.Second))
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCancelAllFailsInFlightQueries(t *testing.T) {
	conn := newFakeConn(func(msg []byte, inbound chan<- []byte) {})
	m := New(conn)
	defer m.Close()

	results := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := m.SendQuery(context.Background(), testQuery(), WithTimeout(time.Second))
			results <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	m.CancelAll()

	for i := 0; i < 3; i++ {
		if err := <-results; !errors.Is(err, ErrCanceled) {
			t.Fatalf("err = %v, want ErrCanceled", err)
		}
	}
}

func TestCloseFailsInFlightQueries(t *testing.T) {
	conn := newFakeConn(func(msg []byte, inbound chan<- []byte) {})
	m := New(conn)

	errCh := make(chan error, 1)
	go func() {
		_, err := m.SendQuery(context.Background(), testQuery(), WithTimeout(time.Second))
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := <-errCh; !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestSendQueryAfterCloseFails(t *testing.T) {
	conn := newFakeConn(echoReply)
	m := New(conn)
	m.Close()

	_, err := m.SendQuery(context.Background(), testQuery())
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestConcurrentQueriesEachResolveIndependently(t *testing.T) {
	conn := newFakeConn(echoReply)
	m := New(conn)
	defer m.Close()

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = m.SendQuery(context.Background(), testQuery())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
	}
}

func TestTransportErrorFailsInFlightQueriesAndFutureSends(t *testing.T) {
	conn := newFakeConn(func(msg []byte, inbound chan<- []byte) {})
	m := New(conn)
	defer m.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := m.SendQuery(context.Background(), testQuery(), WithTimeout(5*time.Second))
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)

	boom := errors.New("boom: connection reset")
	conn.failRecv(boom)
	// unblock the blocked Recv so recvLoop observes the error.
	conn.inbound <- nil

	select {
	case err := <-errCh:
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}
	case <-time.After(time.Second):
		t.Fatal("in-flight query never failed after transport error")
	}

	if _, err := m.SendQuery(context.Background(), testQuery()); !errors.Is(err, ErrClosed) {
		t.Fatalf("SendQuery after transport error: err = %v, want ErrClosed", err)
	}
}

func TestRecvLoopDropsNonResponseMessages(t *testing.T) {
	conn := newFakeConn(func(msg []byte, inbound chan<- []byte) {
		m, err := wire.Decode(msg)
		if err != nil {
			return
		}
		// Echo back a query (QR=0) with the same ID: must be dropped,
		// not mistaken for this query's response.
		resp := &wire.Message{Header: wire.Header{ID: m.Header.ID}}
		encoded, err := wire.Encode(resp)
		if err != nil {
			return
		}
		inbound <- encoded
	})
	m := New(conn)
	defer m.Close()

	_, err := m.SendQuery(context.Background(), testQuery(), WithTimeout(50*time.Millisecond))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout (a QR=0 message must not resolve the query)", err)
	}
}

func TestUnmatchedResponseIsDroppedNotDelivered(t *testing.T) {
	conn := newFakeConn(func(msg []byte, inbound chan<- []byte) {
		// Reply with a fabricated, unrelated ID: it should be counted as
		// unmatched and never delivered to the real pending query.
		resp := &wire.Message{Header: wire.Header{ID: 0xBEEF, Flags: wire.FlagResponse}}
		encoded, err := wire.Encode(resp)
		if err != nil {
			return
		}
		inbound <- encoded
	})
	m := New(conn)
	defer m.Close()

	_, err := m.SendQuery(context.Background(), testQuery(), WithTimeout(50*time.Millisecond))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout (unmatched response must not resolve the real query)", err)
	}
}
