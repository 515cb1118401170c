package meshkv

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/config"
	"github.com/mosaicnetworks/meshkv/src/net"
	"github.com/mosaicnetworks/meshkv/src/peers"
	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, rec string, connect ...string) *MeshKV {
	dir, err := ioutil.TempDir("", "meshkv")
	require.NoError(t, err)

	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.DataDir = dir
	conf.Record = rec
	conf.Peers = connect

	engine := NewMeshKV(conf)
	require.NoError(t, engine.Init())

	return engine
}

func TestEngineRequiresRecord(t *testing.T) {
	conf := config.NewTestConfig(t, common.TestLogLevel)

	err := NewMeshKV(conf).Init()
	assert.Equal(t, config.ErrNoRecord, err)
}

func TestEnginePeersFile(t *testing.T) {
	e1 := newTestEngine(t, "2:20")
	defer os.RemoveAll(e1.Config.DataDir)
	defer e1.Shutdown()

	dir, err := ioutil.TempDir("", "meshkv")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.DataDir = dir
	conf.Record = "1:10"

	content := fmt.Sprintf("[%q]\n", e1.Node.Addr().String())
	require.NoError(t, ioutil.WriteFile(conf.PeersFile(), []byte(content), 0644))

	e0 := NewMeshKV(conf)
	require.NoError(t, e0.Init())
	defer e0.Shutdown()

	assert.Equal(t, []peers.Address{e1.Node.Addr()}, e0.Node.GetPeers())
	assert.Equal(t, []peers.Address{e0.Node.Addr()}, e1.Node.GetPeers())
}

func TestEngineRunAndTerminate(t *testing.T) {
	e1 := newTestEngine(t, "2:20")
	defer os.RemoveAll(e1.Config.DataDir)

	e0 := newTestEngine(t, "1:10", e1.Node.Addr().String())
	defer os.RemoveAll(e0.Config.DataDir)
	defer e0.Shutdown()

	done := make(chan struct{})
	go func() {
		e1.Run()
		close(done)
	}()

	reply, err := net.Query(e0.Node.Addr().String(), "get-max", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "2:20", reply)

	reply, err = net.Query(e1.Node.Addr().String(), "terminate", time.Second)
	require.NoError(t, err)
	assert.Equal(t, proto.ReplyOK, reply)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after terminate")
	}

	assert.Empty(t, e0.Node.GetPeers())
}
