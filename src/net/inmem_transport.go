package net

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mosaicnetworks/meshkv/src/proto"
)

var inmemPort uint32 = 20000

// NewInmemAddr returns a new, unique in-memory host:port address.
func NewInmemAddr() string {
	return fmt.Sprintf("inmem:%d", atomic.AddUint32(&inmemPort, 1))
}

// InmemTransport Implements the Transport interface, to allow meshkv to be
// tested in-memory without going over a network.
type InmemTransport struct {
	sync.RWMutex
	consumerCh chan RPC
	localAddr  string
	peers      map[string]*InmemTransport
	timeout    time.Duration
	closed     bool
}

// NewInmemTransport is used to initialize a new transport
// and generates a random local address if none is specified
func NewInmemTransport(addr string) (string, *InmemTransport) {
	if addr == "" {
		addr = NewInmemAddr()
	}
	trans := &InmemTransport{
		consumerCh: make(chan RPC, 16),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
		timeout:    time.Second,
	}
	return addr, trans
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan RPC {
	return i.consumerCh
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// AdvertiseAddr implements the Transport interface.
func (i *InmemTransport) AdvertiseAddr() string {
	return i.localAddr
}

// Send implements the Transport interface.
func (i *InmemTransport) Send(target string, line string) (string, error) {
	i.RLock()
	peer, ok := i.peers[target]
	i.RUnlock()

	if !ok || peer.isClosed() {
		return "", fmt.Errorf("failed to connect to peer: %v", target)
	}

	// Send the RPC over
	respCh := make(chan RPCResponse, 1)
	rpc := RPC{
		Line:     line,
		RespChan: respCh,
	}

	timeout := time.After(i.timeout)

	select {
	case peer.consumerCh <- rpc:
	case <-timeout:
		return "", fmt.Errorf("command timed out")
	}

	// Wait for a response
	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return proto.ReplyError, nil
		}
		return resp.Response, nil
	case <-timeout:
		return "", fmt.Errorf("command timed out")
	}
}

func (i *InmemTransport) isClosed() bool {
	i.RLock()
	defer i.RUnlock()
	return i.closed
}

// Connect is used to connect this transport to another transport for
// a given peer name. This allows for local routing.
func (i *InmemTransport) Connect(peer string, t Transport) {
	trans := t.(*InmemTransport)
	i.Lock()
	defer i.Unlock()
	i.peers[peer] = trans
}

// Disconnect is used to remove the ability to route to a given peer.
func (i *InmemTransport) Disconnect(peer string) {
	i.Lock()
	defer i.Unlock()
	delete(i.peers, peer)
}

// DisconnectAll is used to remove all routes to peers.
func (i *InmemTransport) DisconnectAll() {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
}

// Close is used to permanently disable the transport. Other transports can no
// longer reach it.
func (i *InmemTransport) Close() error {
	i.Lock()
	i.closed = true
	i.peers = make(map[string]*InmemTransport)
	i.Unlock()
	return nil
}

// Listen is an empty function as there is no need to defer
// initialisation of the InMem service
func (i *InmemTransport) Listen() {
}
