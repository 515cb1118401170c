package node

import (
	"strconv"
	"sync/atomic"

	"github.com/mosaicnetworks/meshkv/src/aggregate"
	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/ledger"
	"github.com/mosaicnetworks/meshkv/src/net"
	"github.com/mosaicnetworks/meshkv/src/peers"
	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// request is a command being routed by this node.
type request struct {
	cmd      proto.Command
	id       proto.RequestID
	trace    ledger.Trace
	origin   peers.Address
	fromPeer bool
}

// sender returns the node that forwarded the request, if any.
func (r *request) sender() (peers.Address, bool) {
	if len(r.trace) == 0 {
		return peers.Address{}, false
	}
	return r.trace[len(r.trace)-1], true
}

func (n *Node) processRPC(rpc net.RPC) {
	atomic.AddUint64(&n.requests, 1)

	if n.getState() != Active {
		rpc.Respond(proto.ReplyError, nil)
		return
	}

	msg, err := proto.ParseLine(rpc.Line)
	if err != nil {
		n.logger.WithFields(logrus.Fields{
			"line":  rpc.Line,
			"error": err,
		}).Warn("Malformed request")
		rpc.Respond(proto.ReplyError, nil)
		return
	}

	var req *request

	if msg.FromPeer() {
		env := msg.Envelope

		if err := n.ledger.Check(env.RequestID); err != nil {
			atomic.AddUint64(&n.replays, 1)
			n.logger.WithError(err).Debug("Rejecting request")
			rpc.Respond(proto.ReplyError, nil)
			return
		}

		req = &request{
			cmd:      env.Command,
			id:       env.RequestID,
			trace:    env.Trace,
			origin:   env.Origin,
			fromPeer: true,
		}
	} else {
		id := n.ids.Next()
		n.ledger.MarkSeen(id)

		req = &request{
			cmd:    msg.Command,
			id:     id,
			origin: n.self,
		}
	}

	rpc.Respond(n.handle(req), nil)

	if !req.fromPeer && req.cmd.Op == proto.Terminate {
		go n.Shutdown()
	}
}

// handle routes a request and returns the reply line.
func (n *Node) handle(req *request) string {
	fields := logrus.Fields{
		"op":    req.cmd.Op,
		"id":    req.id,
		"trace": proto.FormatTrace(req.trace),
	}
	if root, ok := req.trace.Origin(); ok {
		fields["root"] = root.String()
	}
	n.logger.WithFields(fields).Debug("Handle")

	switch req.cmd.Op.Category() {
	case proto.Point:
		return n.handlePoint(req)
	case proto.Aggregate:
		return n.handleAggregate(req)
	case proto.Admin:
		return n.handleAdmin(req)
	default:
		n.logger.WithError(
			common.NewNodeErr("Router", common.UnknownOperation, string(req.cmd.Op)),
		).Debug("Handle")
		return proto.UnknownCommand(req.cmd.Op)
	}
}

func (n *Node) malformed(req *request, err error) string {
	n.logger.WithFields(logrus.Fields{
		"op":    req.cmd.Op,
		"error": err,
	}).Warn("Malformed arguments")
	return proto.ReplyError
}

func (n *Node) handlePoint(req *request) string {
	var key int

	switch req.cmd.Op {
	case proto.GetValue:
		k, err := req.cmd.Key()
		if err != nil {
			return n.malformed(req, err)
		}
		if r, ok := n.record.Lookup(k); ok {
			return r.String()
		}
		key = k
	case proto.FindKey:
		k, err := req.cmd.Key()
		if err != nil {
			return n.malformed(req, err)
		}
		if _, ok := n.record.Lookup(k); ok {
			return n.self.String()
		}
		key = k
	case proto.SetValue:
		r, err := req.cmd.Record()
		if err != nil {
			return n.malformed(req, err)
		}
		if n.record.SetValue(r.Key, r.Value) {
			return proto.ReplyOK
		}
		key = r.Key
	}

	n.logger.WithError(
		common.NewNodeErr("Router", common.Miss, strconv.Itoa(key)),
	).Debug("Forwarding")

	return n.forwardFirst(req, req.cmd)
}

// candidates returns the peers a request may be forwarded to: every peer but
// the sender, this node, and the nodes in the trace, in insertion order.
func (n *Node) candidates(req *request) []peers.Address {
	exclude := []peers.Address{n.self}
	if s, ok := req.sender(); ok {
		exclude = append(exclude, s)
	}

	return req.trace.Unvisited(n.peers.Candidates(exclude...))
}

// envelope builds the line forwarded to the next hop. The origin of a
// forwarded envelope is this node; the trace keeps the node the flood started
// from.
func (n *Node) envelope(req *request, cmd proto.Command) (string, error) {
	env := proto.NewEnvelope(cmd, req.id, req.trace.Extend(n.self), n.self)
	return env.Line(n.wire)
}

// forwardFirst tries the candidates one after the other and returns the first
// reply that is not an error.
func (n *Node) forwardFirst(req *request, cmd proto.Command) string {
	line, err := n.envelope(req, cmd)
	if err != nil {
		return n.malformed(req, err)
	}

	for _, c := range n.candidates(req) {
		reply, err := n.send(c, line)
		if err != nil || proto.IsErrorReply(reply) {
			continue
		}
		return reply
	}

	return proto.ReplyError
}

func (n *Node) handleAggregate(req *request) string {
	cmp, _ := aggregate.For(req.cmd.Op)

	seed, err := req.cmd.Bound(cmp.Seed)
	if err != nil {
		return n.malformed(req, err)
	}

	local := n.record.Get()
	best := cmp.Best(seed, local.Value)

	line, err := n.envelope(req, proto.NewCommand(req.cmd.Op, strconv.Itoa(best)))
	if err != nil {
		return n.malformed(req, err)
	}

	replies := n.fanout(n.candidates(req), line)

	result, ok := aggregate.ReduceExtremum(cmp, seed, local, replies)
	if !ok {
		if req.fromPeer {
			return proto.ReplyError
		}
		return local.String()
	}

	return result.String()
}

// fanout sends the line to every target concurrently. The reply of
// targets[i] is stored at index i; failed calls leave an empty string.
func (n *Node) fanout(targets []peers.Address, line string) []string {
	replies := make([]string, len(targets))

	var g errgroup.Group
	if n.conf.FanoutLimit > 0 {
		g.SetLimit(n.conf.FanoutLimit)
	}

	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			reply, err := n.send(t, line)
			if err == nil {
				replies[i] = reply
			}
			return nil
		})
	}

	g.Wait()

	return replies
}

func (n *Node) handleAdmin(req *request) string {
	switch req.cmd.Op {
	case proto.NewRecord:
		r, err := req.cmd.Record()
		if err != nil {
			return n.malformed(req, err)
		}
		old := n.record.Replace(r)
		n.logger.WithFields(logrus.Fields{
			"old": old.String(),
			"new": r.String(),
		}).Info("New record")
		return proto.ReplyOK
	case proto.GetCons:
		return peers.FormatList(n.peers.Peers())
	case proto.AddConnection:
		addr, err := req.cmd.Address()
		if err != nil {
			return n.malformed(req, err)
		}
		if addr == n.self {
			return proto.ReplyError
		}
		added, list := n.peers.Add(addr)
		n.logger.WithFields(logrus.Fields{
			"peer":  addr.String(),
			"added": added,
		}).Info("Add connection")
		return proto.MembershipReply(added, list)
	case proto.Terminate:
		if req.fromPeer {
			removed := n.peers.Remove(req.origin)
			n.logger.WithFields(logrus.Fields{
				"peer":    req.origin.String(),
				"removed": removed,
			}).Info("Peer terminated")
		}
		return proto.ReplyOK
	}

	return proto.UnknownCommand(req.cmd.Op)
}
