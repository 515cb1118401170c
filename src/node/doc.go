// Package node implements the request router of a meshkv node.
//
// A node owns a single key:value record and knows a set of neighbours. It
// answers the requests it can resolve locally and floods the others to its
// neighbours.
//
// Routing
//
// Every connection accepted by the transport carries one line. Lines that are
// not peer envelopes come from clients: the node assigns them a fresh request
// id, marks it as seen and routes them with an empty trace. Peer envelopes are
// checked against the dedup ledger first, and a request id that was already
// seen is answered with ERROR before anything else happens.
//
// Point queries (get-value, find-key, set-value) are answered locally when the
// node owns the key. Otherwise the node tries its neighbours one at a time, in
// the order it learnt them, skipping the neighbour the request came from and
// every node already in the trace, and returns the first reply that is not an
// error. The trace sent along is the received trace plus this node, so a
// request never visits the same node twice.
//
// Aggregates (get-max, get-min) are sent to every eligible neighbour at once
// with the best value known so far as argument, so that subtrees with nothing
// better answer ERROR. Replies are reduced in neighbour order, with the local
// record first, so ties always resolve the same way.
//
// Administrative commands (new-record, get-cons, add-connection, terminate)
// are handled locally and never forwarded.
//
// Membership
//
// On Init the node announces itself to its initial peers with add-connection.
// On termination it sends terminate to every neighbour, which drop it from
// their peer sets. Membership is not symmetric: a node that receives
// add-connection adds the sender without asking to be added back.
//
// States
//
// Active -> Terminating -> Stopped. A client terminate command, or Shutdown,
// moves the node to Terminating: new requests are refused, neighbours are
// notified, in-flight requests complete, and the transport is closed. The Done
// channel is closed once the node is Stopped.
package node
