package ledger

import (
	"container/list"
	"strconv"
	"sync"
	"time"

	"github.com/mosaicnetworks/meshkv/src/common"
)

// RequestID identifies a client command across all the hops of its flood.
type RequestID int64

// NoDedup is the RequestID of messages that are never deduplicated.
const NoDedup RequestID = -1

// String returns the decimal form of the id.
func (id RequestID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Default bounds of a Ledger.
const (
	DefaultCapacity = 10000
	DefaultTTL      = 5 * time.Minute
)

type entry struct {
	id   RequestID
	seen time.Time
}

// Ledger is a bounded set of RequestIDs. It is safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[RequestID]*list.Element
	order    *list.List
	now      func() time.Time
}

// NewLedger creates a Ledger. A capacity <= 0 selects DefaultCapacity, and a
// ttl <= 0 disables time-based eviction.
func NewLedger(capacity int, ttl time.Duration) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[RequestID]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// HasSeen reports whether the id was already marked.
func (l *Ledger) HasSeen(id RequestID) bool {
	if id == NoDedup {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.now())
	_, ok := l.items[id]
	return ok
}

// MarkSeen records the id. Marking an id twice is a no-op.
func (l *Ledger) MarkSeen(id RequestID) {
	if id == NoDedup {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.markLocked(id)
}

// Observe checks and marks the id in one step. It returns true if the id was
// not seen before, in which case the caller owns the request.
func (l *Ledger) Observe(id RequestID) bool {
	if id == NoDedup {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.now())
	if _, ok := l.items[id]; ok {
		return false
	}
	l.markLocked(id)
	return true
}

// Check is like Observe but returns a Replay error for an id already seen.
func (l *Ledger) Check(id RequestID) error {
	if !l.Observe(id) {
		return common.NewNodeErr("Ledger", common.Replay, id.String())
	}
	return nil
}

// Len returns the number of ids currently remembered.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.now())
	return l.order.Len()
}

func (l *Ledger) markLocked(id RequestID) {
	now := l.now()
	l.pruneLocked(now)

	if _, ok := l.items[id]; ok {
		return
	}

	el := l.order.PushFront(&entry{id: id, seen: now})
	l.items[id] = el

	for l.order.Len() > l.capacity {
		back := l.order.Back()
		old := back.Value.(*entry)
		delete(l.items, old.id)
		l.order.Remove(back)
	}
}

func (l *Ledger) pruneLocked(now time.Time) {
	if l.ttl <= 0 {
		return
	}
	cutoff := now.Add(-l.ttl)
	for {
		back := l.order.Back()
		if back == nil {
			return
		}
		ent := back.Value.(*entry)
		if ent.seen.After(cutoff) {
			return
		}
		delete(l.items, ent.id)
		l.order.Remove(back)
	}
}
