package node

import (
	"sync"
	"sync/atomic"
)

// State captures the state of a meshkv node: Active, Terminating or Stopped.
type State uint32

const (
	// Active is the initial state of a node. It answers clients and peers.
	Active State = iota
	// Terminating is the state in which a node announces its departure and
	// waits for in-flight requests. New requests are answered with ERROR.
	Terminating
	// Stopped is the state in which the transport is closed.
	Stopped
)

// String ...
func (s State) String() string {
	switch s {
	case Active:
		return "Active"
	case Terminating:
		return "Terminating"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

type state struct {
	state   State
	wg      sync.WaitGroup
	wgCount int32
}

func (b *state) getState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

func (b *state) setState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}

// Start a goroutine and add it to waitgroup. Requests are never dropped, so
// there is no limit on the number of routines.
func (b *state) goFunc(f func()) {
	b.wg.Add(1)
	atomic.AddInt32(&b.wgCount, 1)
	go func() {
		defer b.wg.Done()
		defer atomic.AddInt32(&b.wgCount, -1)
		f()
	}()
}

func (b *state) routines() int {
	return int(atomic.LoadInt32(&b.wgCount))
}

func (b *state) waitRoutines() {
	b.wg.Wait()
}
