package node

import (
	"sync/atomic"
	"time"

	"github.com/mosaicnetworks/meshkv/src/proto"
)

// idGenerator hands out clock-derived request ids that are strictly
// increasing within the process.
type idGenerator struct {
	last int64
	now  func() time.Time
}

func newIDGenerator() *idGenerator {
	return &idGenerator{now: time.Now}
}

// Next returns max(now, last+1).
func (g *idGenerator) Next() proto.RequestID {
	for {
		last := atomic.LoadInt64(&g.last)

		next := g.now().UnixNano()
		if next <= last {
			next = last + 1
		}

		if atomic.CompareAndSwapInt64(&g.last, last, next) {
			return proto.RequestID(next)
		}
	}
}
