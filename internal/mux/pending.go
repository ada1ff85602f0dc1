package mux

import (
	"sync"
	"time"

	"github.com/dnsscience/dnsclient/internal/wire"
)

// pendingQuery tracks one in-flight query. Exactly one of deliver,
// timeout, or cancel ever runs for a given pendingQuery — done is closed
// exactly once, guarded by once, so a racing timeout and response can
// never both try to complete it.
type pendingQuery struct {
	id     uint16
	done   chan struct{}
	once   sync.Once
	result *wire.Message
	err    error
	timer  *time.Timer
}

func newPendingQuery(id uint16) *pendingQuery {
	return &pendingQuery{id: id, done: make(chan struct{})}
}

// complete resolves the query exactly once; subsequent calls are no-ops,
// which is how a timeout firing microseconds after a response already
// arrived (or vice versa) is made harmless.
func (p *pendingQuery) complete(msg *wire.Message, err error) {
	p.once.Do(func() {
		p.result = msg
		p.err = err
		if p.timer != nil {
			p.timer.Stop()
		}
		close(p.done)
	})
}
