// Package peers defines the address of a meshkv node and implements the
// collection of peers a node floods requests to.
//
// A node is identified by the address it advertises to other nodes
// (host:port). The same value is used as a network destination and as the
// node's identity in traces.
//
// The PeerSet of a node grows when another node announces itself with an
// add-connection request, and shrinks when a peer announces its termination.
// Membership is not symmetric: a node that is told "add me" adds the sender,
// but the sender never checks that the reverse edge exists. The connectivity
// of the mesh is therefore the best-effort result of these announcements, and
// not an invariant.
//
// Upon starting up, a node may find a peers.json file in its data directory,
// containing a JSON array of "host:port" strings. These peers are joined in
// addition to the ones given on the command line.
package peers
