// Package ledger keeps track of the requests a node has already served and of
// the path followed by the request currently being flooded.
//
// Dedup
//
// Every client command is given a RequestID by the first node that receives
// it, and the id travels unchanged through every hop of the flood. A node
// records the ids of the peer requests it processes in a Ledger and rejects any
// later request carrying an id it has seen (first seen wins). Administrative
// messages carry the NoDedup sentinel and are never checked nor recorded.
//
// The Ledger is bounded. An id is forgotten once it is older than the TTL, or
// when the ledger holds more than Capacity ids, in which case the oldest ids
// are dropped first. The TTL must cover the lifetime of a flood; a request
// replayed after its id was evicted is served again.
//
// Trace
//
// The Trace is the ordered list of nodes a request went through, starting with
// the node that received the client command. A node appends itself before
// forwarding, and never forwards to a node already in the trace. This is the
// only loop-avoidance mechanism of the flood.
package ledger
