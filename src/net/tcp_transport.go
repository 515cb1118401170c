package net

import (
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	errNotAdvertisable = errors.New("local bind address is not advertisable")
	errNotTCP          = errors.New("local address is not a TCP address")
)

// TCPStreamLayer is the StreamLayer of a node reachable over plain TCP.
type TCPStreamLayer struct {
	*net.TCPListener

	// identity of the node, as written in traces and peer lists
	advertise string
}

// Dial opens a connection to another node.
func (t *TCPStreamLayer) Dial(address string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	return d.Dial("tcp", address)
}

// AdvertiseAddr returns the address other nodes use to reach this one.
func (t *TCPStreamLayer) AdvertiseAddr() string {
	return t.advertise
}

// NewTCPTransport binds bindAddr and returns a NetworkTransport on top of it.
// advertise defaults to the bound address, which must then be a concrete IP.
// timeout bounds every outbound call.
func NewTCPTransport(
	bindAddr string,
	advertise string,
	timeout time.Duration,
	logger *logrus.Entry,
) (*NetworkTransport, error) {
	stream, err := listenTCP(bindAddr, advertise)
	if err != nil {
		return nil, err
	}

	return NewNetworkTransport(stream, timeout, logger), nil
}

func listenTCP(bindAddr, advertise string) (*TCPStreamLayer, error) {
	list, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}

	tcpList, ok := list.(*net.TCPListener)
	if !ok {
		list.Close()
		return nil, errNotTCP
	}

	identity, err := advertisable(tcpList.Addr(), advertise)
	if err != nil {
		list.Close()
		return nil, err
	}

	return &TCPStreamLayer{
		TCPListener: tcpList,
		advertise:   identity,
	}, nil
}

// advertisable picks the identity of the node. An explicit advertise address
// must resolve. Without one, a wildcard bind cannot be advertised since peers
// would have no address to call back.
func advertisable(bound net.Addr, advertise string) (string, error) {
	if advertise != "" {
		if _, err := net.ResolveTCPAddr("tcp", advertise); err != nil {
			return "", err
		}
		return advertise, nil
	}

	addr, ok := bound.(*net.TCPAddr)
	if !ok {
		return "", errNotTCP
	}

	if addr.IP.IsUnspecified() {
		return "", errNotAdvertisable
	}

	return addr.String(), nil
}
