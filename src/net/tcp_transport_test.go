package net

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPTransport_BadAddr(t *testing.T) {
	_, err := NewTCPTransport("0.0.0.0:0", "", 0, common.NewTestEntry(t, common.TestLogLevel))
	if err != errNotAdvertisable {
		t.Fatalf("err: %v", err)
	}
}

func TestTCPTransport_WithAdvertise(t *testing.T) {
	trans, err := NewTCPTransport("0.0.0.0:0", "127.0.0.1:12345", 0, common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	defer trans.Close()

	if trans.AdvertiseAddr() != "127.0.0.1:12345" {
		t.Fatalf("bad: %v", trans.AdvertiseAddr())
	}
}

func TestTCPTransport_Timeout(t *testing.T) {
	// A listener that accepts connections but never answers.
	list, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer list.Close()

	go func() {
		for {
			c, err := list.Accept()
			if err != nil {
				return
			}
			defer c.Close()
		}
	}()

	trans, err := NewTCPTransport("127.0.0.1:0", "", 100*time.Millisecond, common.NewTestEntry(t, common.TestLogLevel))
	require.NoError(t, err)
	defer trans.Close()

	start := time.Now()
	_, err = trans.Send(list.Addr().String(), "get-value 1")
	assert.Error(t, err)
	assert.True(t, time.Since(start) < 2*time.Second)
}

func TestTCPTransport_Query(t *testing.T) {
	trans, err := NewTCPTransport("127.0.0.1:0", "", time.Second, common.NewTestEntry(t, common.TestLogLevel))
	require.NoError(t, err)
	defer trans.Close()
	go trans.Listen()

	go func() {
		rpc := <-trans.Consumer()
		rpc.Respond(strings.ToUpper(rpc.Line), nil)
	}()

	reply, err := Query(trans.LocalAddr(), "terminate", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "TERMINATE", reply)
}

func TestTCPTransport_IdleCallerDropped(t *testing.T) {
	trans, err := NewTCPTransport("127.0.0.1:0", "", 100*time.Millisecond, common.NewTestEntry(t, common.TestLogLevel))
	require.NoError(t, err)
	defer trans.Close()
	go trans.Listen()

	conn, err := net.Dial("tcp", trans.LocalAddr())
	require.NoError(t, err)
	defer conn.Close()

	// Send nothing and wait for the transport to hang up.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	start := time.Now()
	_, err = conn.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err)
	assert.True(t, time.Since(start) < 5*time.Second)
}
