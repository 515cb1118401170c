package ledger

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mosaicnetworks/meshkv/src/common"
)

func TestLedgerObserve(t *testing.T) {
	l := NewLedger(10, time.Minute)

	if l.HasSeen(1) {
		t.Fatalf("fresh ledger should not have seen 1")
	}
	if !l.Observe(1) {
		t.Fatalf("first Observe should be fresh")
	}
	if l.Observe(1) {
		t.Fatalf("second Observe should be a replay")
	}
	if !l.HasSeen(1) {
		t.Fatalf("1 should be seen")
	}

	err := l.Check(1)
	if !common.Is(err, common.Replay) {
		t.Fatalf("Check should return a Replay error, not %v", err)
	}
	if err := l.Check(2); err != nil {
		t.Fatalf("err: %v", err)
	}
}

func TestLedgerMarkSeenIdempotent(t *testing.T) {
	l := NewLedger(10, 0)

	l.MarkSeen(7)
	l.MarkSeen(7)

	if l.Len() != 1 {
		t.Fatalf("ledger should hold 1 id, not %d", l.Len())
	}
}

func TestLedgerNoDedup(t *testing.T) {
	l := NewLedger(10, 0)

	for i := 0; i < 3; i++ {
		if !l.Observe(NoDedup) {
			t.Fatalf("NoDedup should never be a replay")
		}
	}
	l.MarkSeen(NoDedup)

	if l.HasSeen(NoDedup) {
		t.Fatalf("NoDedup should never be marked")
	}
	if l.Len() != 0 {
		t.Fatalf("ledger should be empty, not %d", l.Len())
	}
}

func TestLedgerCapacity(t *testing.T) {
	l := NewLedger(3, 0)

	for id := RequestID(1); id <= 5; id++ {
		l.MarkSeen(id)
	}

	if l.Len() != 3 {
		t.Fatalf("ledger should hold 3 ids, not %d", l.Len())
	}
	for _, id := range []RequestID{1, 2} {
		if l.HasSeen(id) {
			t.Fatalf("%d should have been evicted", id)
		}
	}
	for _, id := range []RequestID{3, 4, 5} {
		if !l.HasSeen(id) {
			t.Fatalf("%d should still be seen", id)
		}
	}
}

func TestLedgerTTL(t *testing.T) {
	l := NewLedger(10, time.Minute)

	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	l.MarkSeen(1)
	now = now.Add(30 * time.Second)
	l.MarkSeen(2)

	now = now.Add(45 * time.Second)

	if l.HasSeen(1) {
		t.Fatalf("1 should have expired")
	}
	if !l.HasSeen(2) {
		t.Fatalf("2 should not have expired yet")
	}

	// An expired id is served again
	if !l.Observe(1) {
		t.Fatalf("expired id should be fresh again")
	}
}

func TestLedgerDefaultCapacity(t *testing.T) {
	l := NewLedger(0, 0)
	if l.capacity != DefaultCapacity {
		t.Fatalf("capacity should default to %d, not %d", DefaultCapacity, l.capacity)
	}
}

func TestLedgerConcurrentObserve(t *testing.T) {
	l := NewLedger(100, time.Minute)

	var fresh int32
	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Observe(42) {
				atomic.AddInt32(&fresh, 1)
			}
		}()
	}
	wg.Wait()

	if fresh != 1 {
		t.Fatalf("exactly one caller should own the request, not %d", fresh)
	}
}
