// Package net implements the transports used by meshkv nodes to receive
// requests and to talk to their neighbours.
//
// A connection carries exactly one request line followed by one reply line,
// after which it is closed. Incoming lines are delivered to the node as RPC
// objects on the Consumer channel, and the node answers through RPC.Respond.
// Outgoing requests go through Send, which dials the target, writes the line,
// and waits for the reply under a deadline.
//
// There are two implementations of the Transport interface:
//
// - TCP: plain TCP sockets, used by the meshkv binary.
//
// - Inmem: in-memory transport used for testing.
//
// The TCP transport binds to BindAddr. AdvertiseAddr is the address the node
// identifies itself with in traces and join requests; it defaults to the
// address of the listener.
package net
