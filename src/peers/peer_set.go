package peers

import (
	"strings"
	"sync"
)

// PeerSet is the ordered, duplicate-free set of addresses a node forwards
// requests to. Insertion order is preserved and is the order in which
// candidates are tried. It is safe for concurrent use.
type PeerSet struct {
	sync.RWMutex
	addrs []Address
}

// NewPeerSet creates a PeerSet from a list of addresses. Duplicates are
// dropped, keeping the first occurrence.
func NewPeerSet(addrs []Address) *PeerSet {
	ps := &PeerSet{
		addrs: make([]Address, 0, len(addrs)),
	}

	for _, a := range addrs {
		ps.addRaw(a)
	}

	return ps
}

// addRaw is not protected by the mutex. Handle with care.
func (ps *PeerSet) addRaw(addr Address) bool {
	for _, a := range ps.addrs {
		if a == addr {
			return false
		}
	}
	ps.addrs = append(ps.addrs, addr)
	return true
}

// Add inserts the address if it is absent. It reports whether the address was
// added, and returns a snapshot of the membership after the operation.
func (ps *PeerSet) Add(addr Address) (bool, []Address) {
	ps.Lock()
	defer ps.Unlock()

	added := ps.addRaw(addr)

	return added, ps.snapshot()
}

// Remove removes every entry matching the address and returns how many were
// removed.
func (ps *PeerSet) Remove(addr Address) int {
	ps.Lock()
	defer ps.Unlock()

	_, others := ExcludeAddress(ps.addrs, addr)
	removed := len(ps.addrs) - len(others)
	ps.addrs = others

	return removed
}

// Candidates returns a copy of the peers, in insertion order, without the
// excluded addresses.
func (ps *PeerSet) Candidates(exclude ...Address) []Address {
	ps.RLock()
	defer ps.RUnlock()

	res := make([]Address, 0, len(ps.addrs))

NextPeer:
	for _, a := range ps.addrs {
		for _, e := range exclude {
			if a == e {
				continue NextPeer
			}
		}
		res = append(res, a)
	}

	return res
}

// Peers returns a copy of the peers in insertion order.
func (ps *PeerSet) Peers() []Address {
	ps.RLock()
	defer ps.RUnlock()

	return ps.snapshot()
}

// Contains reports whether the address belongs to the set.
func (ps *PeerSet) Contains(addr Address) bool {
	ps.RLock()
	defer ps.RUnlock()

	for _, a := range ps.addrs {
		if a == addr {
			return true
		}
	}
	return false
}

// Len returns the number of peers.
func (ps *PeerSet) Len() int {
	ps.RLock()
	defer ps.RUnlock()

	return len(ps.addrs)
}

// String renders the set as [host:port, host:port].
func (ps *PeerSet) String() string {
	return FormatList(ps.Peers())
}

func (ps *PeerSet) snapshot() []Address {
	res := make([]Address, len(ps.addrs))
	copy(res, ps.addrs)
	return res
}

// FormatList renders a list of addresses as [host:port, host:port].
func FormatList(addrs []Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
