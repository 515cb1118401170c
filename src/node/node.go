package node

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/config"
	"github.com/mosaicnetworks/meshkv/src/ledger"
	"github.com/mosaicnetworks/meshkv/src/net"
	"github.com/mosaicnetworks/meshkv/src/peers"
	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/mosaicnetworks/meshkv/src/record"
	"github.com/sirupsen/logrus"
)

// Node defines a meshkv node
type Node struct {
	state

	conf   *config.Config
	logger *logrus.Entry

	self    peers.Address
	record  *record.Cell
	peers   *peers.PeerSet
	initial []peers.Address
	ledger *ledger.Ledger
	ids    *idGenerator
	wire   proto.WireFormat

	trans net.Transport
	netCh <-chan net.RPC

	shutdownCh   chan struct{}
	loopDone     chan struct{}
	doneCh       chan struct{}
	started      int32
	shutdownOnce sync.Once

	start         time.Time
	requests      uint64
	forwards      uint64
	forwardErrors uint64
	replays       uint64
}

// NewNode is a factory method that returns a Node instance. The node is
// identified by the advertise address of the transport. Its own address is
// never kept in the peer set. The content of peerSet at this point is the list
// of initial peers the node announces itself to in Init.
func NewNode(conf *config.Config,
	rec record.Record,
	peerSet *peers.PeerSet,
	trans net.Transport,
) (*Node, error) {

	self, err := peers.ParseAddress(trans.AdvertiseAddr())
	if err != nil {
		return nil, err
	}

	peerSet.Remove(self)

	node := Node{
		conf:       conf,
		logger:     conf.Logger().WithField("this_addr", self.String()),
		self:       self,
		record:     record.NewCell(rec),
		peers:      peerSet,
		initial:    peerSet.Peers(),
		ledger:     ledger.NewLedger(conf.DedupCapacity, conf.DedupTTL),
		ids:        newIDGenerator(),
		wire:       conf.Wire(),
		trans:      trans,
		netCh:      trans.Consumer(),
		shutdownCh: make(chan struct{}),
		loopDone:   make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	return &node, nil
}

// Init starts serving requests and announces the node to its initial peers.
// Peers that cannot be reached stay in the peer set.
func (n *Node) Init() error {
	n.start = time.Now()

	n.serve()

	n.join()

	return nil
}

// serve starts consuming requests from the transport, once.
func (n *Node) serve() {
	if atomic.CompareAndSwapInt32(&n.started, 0, 1) {
		go n.doBackgroundWork()
	}
}

// RunAsync calls Run as a separate thread
func (n *Node) RunAsync() {
	go n.Run()
}

// Run blocks until the node is stopped.
func (n *Node) Run() {
	<-n.doneCh
}

// Done is closed when the node is stopped.
func (n *Node) Done() <-chan struct{} {
	return n.doneCh
}

func (n *Node) doBackgroundWork() {
	defer close(n.loopDone)

	for {
		select {
		case rpc := <-n.netCh:
			n.goFunc(func() {
				n.processRPC(rpc)
			})
		case <-n.shutdownCh:
			return
		}
	}
}

// join sends add-connection to every initial peer.
func (n *Node) join() {
	env := proto.NewEnvelope(
		proto.NewCommand(proto.AddConnection, n.self.String()),
		proto.NoDedup,
		ledger.Trace{n.self},
		n.self,
	)

	line, err := env.Line(n.wire)
	if err != nil {
		n.logger.WithError(err).Error("Encoding join request")
		return
	}

	for _, p := range n.initial {
		reply, err := n.send(p, line)
		if err != nil {
			n.logger.WithField("target", p.String()).Warn("Initial peer unreachable")
			continue
		}

		n.logger.WithFields(logrus.Fields{
			"target": p.String(),
			"reply":  reply,
		}).Debug("Joined")
	}
}

// leave sends terminate to every peer.
func (n *Node) leave() {
	env := proto.NewEnvelope(
		proto.NewCommand(proto.Terminate),
		proto.NoDedup,
		ledger.Trace{n.self},
		n.self,
	)

	line, err := env.Line(n.wire)
	if err != nil {
		n.logger.WithError(err).Error("Encoding terminate request")
		return
	}

	for _, p := range n.peers.Candidates(n.self) {
		if _, err := n.send(p, line); err != nil {
			continue
		}
		n.logger.WithField("target", p.String()).Debug("Notified termination")
	}
}

// send forwards a line to a peer. Transport failures and timeouts are wrapped
// as Unreachable errors.
func (n *Node) send(target peers.Address, line string) (string, error) {
	atomic.AddUint64(&n.forwards, 1)

	reply, err := n.trans.Send(target.String(), line)
	if err != nil {
		atomic.AddUint64(&n.forwardErrors, 1)

		err = common.WrapNodeErr("Router", common.Unreachable, target.String(), err)
		n.logger.WithError(err).Debug("Send")

		return "", err
	}

	return reply, nil
}

// Shutdown notifies the peers, waits for in-flight requests and closes the
// transport. It is safe to call more than once.
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		n.logger.Debug("Shutdown")

		// Refuse new requests
		n.setState(Terminating)

		n.leave()

		// Stop and wait for concurrent operations
		close(n.shutdownCh)
		if atomic.LoadInt32(&n.started) == 1 {
			<-n.loopDone
		}
		n.waitRoutines()

		// transport should only be closed once all concurrent operations are
		// finished
		n.trans.Close()

		n.setState(Stopped)
		close(n.doneCh)
	})
}

// GetStats returns stats
func (n *Node) GetStats() map[string]string {
	u := func(p *uint64) string {
		return strconv.FormatUint(atomic.LoadUint64(p), 10)
	}

	s := map[string]string{
		"state":          n.getState().String(),
		"address":        n.self.String(),
		"record":         n.record.Get().String(),
		"num_peers":      strconv.Itoa(n.peers.Len()),
		"requests":       u(&n.requests),
		"forwards":       u(&n.forwards),
		"forward_errors": u(&n.forwardErrors),
		"replays":        u(&n.replays),
		"routines":       strconv.Itoa(n.routines()),
		"seen_ids":       strconv.Itoa(n.ledger.Len()),
		"uptime":         time.Since(n.start).Round(time.Second).String(),
	}
	return s
}

// GetState returns the current state of the node.
func (n *Node) GetState() State {
	return n.getState()
}

// GetPeers returns the current peer set.
func (n *Node) GetPeers() []peers.Address {
	return n.peers.Peers()
}

// GetRecord returns the record owned by the node.
func (n *Node) GetRecord() record.Record {
	return n.record.Get()
}

// Addr returns the address identifying the node.
func (n *Node) Addr() peers.Address {
	return n.self
}
