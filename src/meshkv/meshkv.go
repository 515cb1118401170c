// Package meshkv wires the configuration, transport, node and HTTP service of
// a meshkv node.
package meshkv

import (
	"fmt"
	"os"

	"github.com/mosaicnetworks/meshkv/src/config"
	"github.com/mosaicnetworks/meshkv/src/net"
	"github.com/mosaicnetworks/meshkv/src/node"
	"github.com/mosaicnetworks/meshkv/src/peers"
	"github.com/mosaicnetworks/meshkv/src/record"
	"github.com/mosaicnetworks/meshkv/src/service"
	"github.com/sirupsen/logrus"
)

// MeshKV is the engine of a node.
type MeshKV struct {
	Config    *config.Config
	Node      *node.Node
	Transport net.Transport
	Peers     *peers.PeerSet
	Service   *service.Service
	logger    *logrus.Entry
}

// NewMeshKV creates an engine. Init must be called before Run.
func NewMeshKV(c *config.Config) *MeshKV {
	engine := &MeshKV{
		Config: c,
		logger: c.Logger(),
	}

	return engine
}

// initTransport binds the listener and starts accepting connections, so that
// the bound port is known before the node announces itself.
func (m *MeshKV) initTransport() error {
	transport, err := net.NewTCPTransport(
		m.Config.BindAddr,
		m.Config.AdvertiseAddr,
		m.Config.TCPTimeout,
		m.logger,
	)

	if err != nil {
		return err
	}

	go transport.Listen()

	m.Transport = transport

	return nil
}

// initPeers collects the initial peers from the configuration and, if present,
// from peers.json in the data directory.
func (m *MeshKV) initPeers() error {
	var addrs []peers.Address

	for _, p := range m.Config.Peers {
		a, err := peers.ParseAddress(p)
		if err != nil {
			return fmt.Errorf("invalid peer %q: %v", p, err)
		}
		addrs = append(addrs, a)
	}

	peerStore := peers.NewJSONPeers(m.Config.PeersFile())

	fromFile, err := peerStore.Peers()
	switch {
	case err == nil:
		m.logger.WithFields(logrus.Fields{
			"path":  peerStore.Path(),
			"peers": len(fromFile),
		}).Debug("Loaded peers file")
		addrs = append(addrs, fromFile...)
	case os.IsNotExist(err):
	default:
		return err
	}

	m.Peers = peers.NewPeerSet(addrs)

	return nil
}

func (m *MeshKV) initNode() error {
	rec, err := record.Parse(m.Config.Record)
	if err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"record": rec.String(),
		"peers":  m.Peers.String(),
	}).Debug("PEERS")

	n, err := node.NewNode(m.Config, rec, m.Peers, m.Transport)
	if err != nil {
		return err
	}

	if err := n.Init(); err != nil {
		return fmt.Errorf("failed to initialize node: %s", err)
	}

	m.Node = n

	return nil
}

func (m *MeshKV) initService() error {
	if !m.Config.NoService {
		m.Service = service.NewService(m.Config.ServiceAddr, m.Node, m.logger)
	}
	return nil
}

// Init validates the configuration, binds the transport, starts the node and
// prepares the HTTP service.
func (m *MeshKV) Init() error {
	if err := m.Config.Validate(); err != nil {
		return err
	}

	if err := m.initPeers(); err != nil {
		return err
	}

	if err := m.initTransport(); err != nil {
		return err
	}

	if err := m.initNode(); err != nil {
		m.Transport.Close()
		return err
	}

	if err := m.initService(); err != nil {
		return err
	}

	m.logger.WithField("address", m.Node.Addr().String()).Info("Node started")

	return nil
}

// Run serves the HTTP API and blocks until the node is stopped.
func (m *MeshKV) Run() {
	if m.Service != nil {
		go m.Service.Serve()
	}

	m.Node.Run()

	if m.Service != nil {
		m.Service.Close()
	}
}

// Shutdown stops the node.
func (m *MeshKV) Shutdown() {
	if m.Node != nil {
		m.Node.Shutdown()
	}
}
