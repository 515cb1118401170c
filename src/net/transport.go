package net

// Transport provides an interface for network transports to allow a node to
// communicate with other nodes and to serve clients.
type Transport interface {

	// Starts the transport listening
	Listen()

	// Consumer returns a channel that can be used to consume and respond to
	// incoming requests.
	Consumer() <-chan RPC

	// LocalAddr is used to return our local address
	LocalAddr() string

	// AdvertiseAddr is used to return our advertise address where other peers
	// can reach us
	AdvertiseAddr() string

	// Send writes a request line to the target and returns its reply line.
	// Failing to connect, or to get a reply before the timeout, is an error.
	Send(target string, line string) (string, error)

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}
