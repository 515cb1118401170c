package net

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/sirupsen/logrus"
)

var (
	// ErrTransportShutdown is returned when operations on a transport are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")
)

/*
NetworkTransport provides a network based transport that can be used to
communicate with meshkv nodes on remote machines. It requires an underlying
stream layer to provide a stream abstraction, which can be simple TCP, TLS, etc.

This transport is very simple and lightweight. Every request opens a fresh
connection on which a single newline-terminated request line is written. The
remote end answers with a single newline-terminated reply line and closes the
connection. There is no connection pooling: a request line and its reply are
the whole lifetime of a connection.
*/
type NetworkTransport struct {
	logger *logrus.Entry

	consumeCh chan RPC

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	stream StreamLayer

	timeout time.Duration
}

// NewNetworkTransport creates a new network transport with the given stream
// layer. The timeout bounds dialing, writing and reading of outbound requests.
func NewNetworkTransport(
	stream StreamLayer,
	timeout time.Duration,
	logger *logrus.Entry,
) *NetworkTransport {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	trans := &NetworkTransport{
		consumeCh:  make(chan RPC),
		logger:     logger,
		shutdownCh: make(chan struct{}),
		stream:     stream,
		timeout:    timeout,
	}

	return trans
}

// Close is used to stop the network transport.
func (n *NetworkTransport) Close() error {
	n.shutdownLock.Lock()
	defer n.shutdownLock.Unlock()

	if !n.shutdown {
		close(n.shutdownCh)
		n.stream.Close()

		n.shutdown = true
	}
	return nil
}

// Consumer implements the Transport interface.
func (n *NetworkTransport) Consumer() <-chan RPC {
	return n.consumeCh
}

// LocalAddr implements the Transport interface.
func (n *NetworkTransport) LocalAddr() string {
	addr := n.stream.Addr()

	if addr != nil {
		return addr.String()
	}

	return ""
}

// AdvertiseAddr implements the Transport interface.
func (n *NetworkTransport) AdvertiseAddr() string {
	return n.stream.AdvertiseAddr()
}

// IsShutdown is used to check if the transport is shutdown.
func (n *NetworkTransport) IsShutdown() bool {
	select {
	case <-n.shutdownCh:
		return true
	default:
		return false
	}
}

// Send implements the Transport interface.
func (n *NetworkTransport) Send(target string, line string) (string, error) {
	if n.IsShutdown() {
		return "", ErrTransportShutdown
	}

	conn, err := n.stream.Dial(target, n.timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return exchange(conn, line, n.timeout)
}

// Listen opens the stream and handles incoming connections.
func (n *NetworkTransport) Listen() {
	for {
		// Accept incoming connections
		conn, err := n.stream.Accept()
		if err != nil {
			if n.IsShutdown() {
				return
			}
			n.logger.WithField("error", err).Error("Failed to accept connection")
			continue
		}
		n.logger.WithFields(logrus.Fields{
			"node": conn.LocalAddr(),
			"from": conn.RemoteAddr(),
		}).Debug("accepted connection")

		// Handle the connection in dedicated routine
		go n.handleConn(conn)
	}
}

// handleConn reads one request line, dispatches it and writes the reply.
func (n *NetworkTransport) handleConn(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReaderSize(conn, maxLineSize)
	w := bufio.NewWriter(conn)

	// A caller that never completes its request line is dropped.
	if n.timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(n.timeout))
	}

	line, err := readLine(r)
	if err != nil {
		if err != io.EOF {
			n.logger.WithField("error", err).Error("Failed to read request")
		}
		if err == ErrLineTooLong {
			writeLine(w, proto.ReplyError)
		}
		return
	}

	reply, err := n.handleCommand(line)
	if err != nil {
		n.logger.WithField("error", err).Warn("Failed to handle request")
		return
	}

	if err := writeLine(w, reply); err != nil {
		n.logger.WithField("error", err).Error("Failed to write reply")
	}
}

// handleCommand is used to dispatch a single request line and wait for the
// reply.
func (n *NetworkTransport) handleCommand(line string) (string, error) {
	respCh := make(chan RPCResponse, 1)
	rpc := RPC{
		Line:     line,
		RespChan: respCh,
	}

	// Dispatch the RPC
	select {
	case n.consumeCh <- rpc:
	case <-n.shutdownCh:
		return "", ErrTransportShutdown
	}

	// Wait for response. A reply that raced with shutdown is still delivered.
	select {
	case resp := <-respCh:
		return responseLine(resp), nil
	case <-n.shutdownCh:
		select {
		case resp := <-respCh:
			return responseLine(resp), nil
		default:
			return "", ErrTransportShutdown
		}
	}
}

func responseLine(resp RPCResponse) string {
	if resp.Error != nil {
		return proto.ReplyError
	}
	return resp.Response
}
