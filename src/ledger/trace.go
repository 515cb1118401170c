package ledger

import (
	"github.com/mosaicnetworks/meshkv/src/peers"
)

// Trace is the ordered list of nodes visited by a request.
type Trace []peers.Address

// Extend returns a new Trace with self appended. The receiver is not modified.
func (t Trace) Extend(self peers.Address) Trace {
	res := make(Trace, len(t), len(t)+1)
	copy(res, t)
	return append(res, self)
}

// Contains reports whether the address was already visited.
func (t Trace) Contains(addr peers.Address) bool {
	for _, a := range t {
		if a == addr {
			return true
		}
	}
	return false
}

// Excludes reports whether the candidate must not be targeted because it is
// already in the trace.
func Excludes(t Trace, candidate peers.Address) bool {
	return t.Contains(candidate)
}

// Unvisited filters out of candidates every address present in the trace,
// preserving order.
func (t Trace) Unvisited(candidates []peers.Address) []peers.Address {
	res := make([]peers.Address, 0, len(candidates))
	for _, c := range candidates {
		if !Excludes(t, c) {
			res = append(res, c)
		}
	}
	return res
}

// Origin returns the first node of the trace.
func (t Trace) Origin() (peers.Address, bool) {
	if len(t) == 0 {
		return peers.Address{}, false
	}
	return t[0], true
}
