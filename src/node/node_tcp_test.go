package node

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/net"
	"github.com/mosaicnetworks/meshkv/src/peers"
	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/mosaicnetworks/meshkv/src/record"
)

func newTCPNode(t *testing.T, rec record.Record, initial []peers.Address) *Node {
	conf := newTestConfig(t, proto.LineFormat)

	trans, err := net.NewTCPTransport(conf.BindAddr, "", conf.TCPTimeout, common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	go trans.Listen()

	node, err := NewNode(conf, rec, peers.NewPeerSet(initial), trans)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if err := node.Init(); err != nil {
		t.Fatalf("err: %v", err)
	}

	return node
}

func TestTCPTermination(t *testing.T) {
	node1 := newTCPNode(t, record.New(2, 20), nil)
	defer node1.Shutdown()

	node0 := newTCPNode(t, record.New(1, 10), []peers.Address{node1.Addr()})
	defer node0.Shutdown()

	reply, err := net.Query(node0.Addr().String(), "get-value 2", time.Second)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if reply != "2:20" {
		t.Fatalf("expected 2:20, got %s", reply)
	}

	if len(node1.GetPeers()) != 1 {
		t.Fatalf("expected node1 to know node0, got %v", node1.GetPeers())
	}

	reply, err = net.Query(node1.Addr().String(), "terminate", time.Second)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if reply != proto.ReplyOK {
		t.Fatalf("expected OK, got %s", reply)
	}

	select {
	case <-node1.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("node did not stop")
	}

	if len(node0.GetPeers()) != 0 {
		t.Fatalf("expected node0 to forget node1, got %v", node0.GetPeers())
	}

	if _, err := net.Query(node1.Addr().String(), "get-value 2", time.Second); err == nil {
		t.Fatal("expected stopped node to refuse connections")
	}

	reply, err = net.Query(node0.Addr().String(), "get-value 2", time.Second)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if reply != proto.ReplyError {
		t.Fatalf("expected ERROR, got %s", reply)
	}
}

func TestTCPUnreachablePeer(t *testing.T) {
	ghost, _ := peers.ParseAddress("127.0.0.1:1")

	node1 := newTCPNode(t, record.New(2, 20), nil)
	defer node1.Shutdown()

	node0 := newTCPNode(t, record.New(1, 10), []peers.Address{ghost, node1.Addr()})
	defer node0.Shutdown()

	reply, err := net.Query(node0.Addr().String(), "get-max", 5*time.Second)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if reply != "2:20" {
		t.Fatalf("expected 2:20, got %s", reply)
	}
}
