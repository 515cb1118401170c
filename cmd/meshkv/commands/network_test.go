package commands

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/net"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNetworkConfig(t *testing.T, nodes int, topology string) *NetworkConfig {
	dir, err := ioutil.TempDir("", "meshkv-network")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	conf := NewDefaultNetworkConfig()
	conf.NbNodes = nodes
	conf.Topology = topology
	conf.BasePort = 0
	conf.Node.DataDir = dir
	conf.Node.TCPTimeout = time.Second
	conf.Node.SetLogger(common.NewTestLogger(t, common.TestLogLevel))

	return conf
}

func TestNodeConfigTopologies(t *testing.T) {
	started := []string{"127.0.0.1:1", "127.0.0.1:2", "127.0.0.1:3"}

	conf := testNetworkConfig(t, 4, TopologyChain)
	assert.Empty(t, nodeConfig(conf, 0, nil).Peers)
	assert.Equal(t, []string{"127.0.0.1:3"}, nodeConfig(conf, 3, started).Peers)
	assert.Equal(t, "4:40", nodeConfig(conf, 3, started).Record)

	conf.Topology = TopologyRing
	assert.Equal(t, []string{"127.0.0.1:3", "127.0.0.1:1"}, nodeConfig(conf, 3, started).Peers)
	assert.Equal(t, []string{"127.0.0.1:2"}, nodeConfig(conf, 2, started).Peers)

	conf.Topology = TopologyStar
	assert.Equal(t, []string{"127.0.0.1:1"}, nodeConfig(conf, 3, started).Peers)

	conf.BasePort = 4000
	assert.Equal(t, "127.0.0.1:4020", nodeConfig(conf, 2, started).BindAddr)
}

func TestNetworkChain(t *testing.T) {
	conf := testNetworkConfig(t, 3, TopologyChain)

	engines, err := startNetwork(conf)
	require.NoError(t, err)
	require.Len(t, engines, 3)
	defer stopNetwork(engines)

	last := engines[2].Node.Addr().String()

	reply, err := net.Query(last, "get-value 1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1:10", reply)

	reply, err = net.Query(engines[0].Node.Addr().String(), "get-max", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "3:30", reply)
}

func TestNetworkFlags(t *testing.T) {
	conf := NewDefaultNetworkConfig()
	cmd := &cobra.Command{Use: "network"}
	AddNetworkFlags(cmd, conf)

	require.NoError(t, cmd.Flags().Set("topology", "mesh"))
	assert.Error(t, loadNetworkConfig(cmd, conf))

	require.NoError(t, cmd.Flags().Set("topology", "ring"))
	require.NoError(t, cmd.Flags().Set("nodes", "5"))
	require.NoError(t, loadNetworkConfig(cmd, conf))
	assert.Equal(t, 5, conf.NbNodes)
	assert.Equal(t, TopologyRing, conf.Topology)
}
