package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"github.com/mosaicnetworks/meshkv/src/config"
	"github.com/mosaicnetworks/meshkv/src/meshkv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Topologies accepted by the network command.
const (
	TopologyChain = "chain"
	TopologyRing  = "ring"
	TopologyStar  = "star"
)

//NetworkConfig contains configuration for the Network command
type NetworkConfig struct {
	Node        config.Config `mapstructure:",squash"`
	NbNodes     int           `mapstructure:"nodes"`
	Topology    string        `mapstructure:"topology"`
	BasePort    int           `mapstructure:"base-port"`
	ServicePort int           `mapstructure:"service-port"`
}

//NewDefaultNetworkConfig creates a NetworkConfig with default values
func NewDefaultNetworkConfig() *NetworkConfig {
	node := config.NewDefaultConfig()
	node.NoService = true

	return &NetworkConfig{
		Node:        *node,
		NbNodes:     4,
		Topology:    TopologyChain,
		BasePort:    1337,
		ServicePort: 8080,
	}
}

//NewNetworkCmd returns the command that runs a local mesh of nodes in a single
//process
func NewNetworkCmd() *cobra.Command {
	conf := NewDefaultNetworkConfig()

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Run a local network of nodes",
		Long: `Run a local network of nodes.

Node i listens on 127.0.0.1:<base-port + 10*i> and owns the record
<i+1>:<10*(i+1)>. With --base-port 0 every node picks a free port.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadNetworkConfig(cmd, conf)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetwork(conf)
		},
	}

	AddNetworkFlags(cmd, conf)

	return cmd
}

//AddNetworkFlags adds flags to the Network command
func AddNetworkFlags(cmd *cobra.Command, conf *NetworkConfig) {
	cmd.Flags().Int("nodes", conf.NbNodes, "Amount of nodes to spawn")
	cmd.Flags().String("topology", conf.Topology, "chain, ring, star")
	cmd.Flags().Int("base-port", conf.BasePort, "Port of the first node (0 for free ports)")
	cmd.Flags().Int("service-port", conf.ServicePort, "HTTP port of the first node")
	cmd.Flags().Bool("no-service", conf.Node.NoService, "Disable HTTP services")
	cmd.Flags().StringP("datadir", "d", conf.Node.DataDir, "Top-level directory, node i reads <datadir>/node<i>")
	cmd.Flags().String("log", conf.Node.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().DurationP("timeout", "t", conf.Node.TCPTimeout, "TCP Timeout")
	cmd.Flags().String("wire", conf.Node.WireFormat, "Envelope format sent to peers (line, json)")
}

func loadNetworkConfig(cmd *cobra.Command, conf *NetworkConfig) error {
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if err := v.Unmarshal(conf); err != nil {
		return err
	}

	if conf.NbNodes < 1 {
		return fmt.Errorf("nodes must be at least 1")
	}

	switch conf.Topology {
	case TopologyChain, TopologyRing, TopologyStar:
	default:
		return fmt.Errorf("unknown topology %q", conf.Topology)
	}

	return nil
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runNetwork(conf *NetworkConfig) error {
	engines, err := startNetwork(conf)
	if err != nil {
		return err
	}

	wg := sync.WaitGroup{}

	for i, e := range engines {
		wg.Add(1)

		go func(i int, e *meshkv.MeshKV) {
			defer wg.Done()

			e.Run()

			fmt.Println("Terminated", i)
		}(i, e)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})

	go func() {
		select {
		case <-sigCh:
			stopNetwork(engines)
		case <-done:
		}
	}()

	wg.Wait()
	close(done)

	return nil
}

// startNetwork starts the nodes one after the other. Each node is given the
// advertised addresses of the nodes started before it, so ephemeral ports
// work.
func startNetwork(conf *NetworkConfig) ([]*meshkv.MeshKV, error) {
	engines := make([]*meshkv.MeshKV, 0, conf.NbNodes)
	addrs := make([]string, 0, conf.NbNodes)

	for i := 0; i < conf.NbNodes; i++ {
		c := nodeConfig(conf, i, addrs)

		engine := meshkv.NewMeshKV(c)

		if err := engine.Init(); err != nil {
			stopNetwork(engines)
			return nil, fmt.Errorf("node %d: %v", i, err)
		}

		c.Logger().WithFields(logrus.Fields{
			"index":   i,
			"address": engine.Node.Addr().String(),
			"peers":   c.Peers,
		}).Info("Running")

		engines = append(engines, engine)
		addrs = append(addrs, engine.Node.Addr().String())
	}

	return engines, nil
}

func nodeConfig(conf *NetworkConfig, i int, started []string) *config.Config {
	c := conf.Node

	key := i + 1
	c.Record = strconv.Itoa(key) + ":" + strconv.Itoa(key*10)
	c.DataDir = filepath.Join(conf.Node.DataDir, "node"+strconv.Itoa(i))
	c.AdvertiseAddr = ""
	c.BindAddr = "127.0.0.1:0"
	if conf.BasePort > 0 {
		c.BindAddr = "127.0.0.1:" + strconv.Itoa(conf.BasePort+i*10)
	}
	c.ServiceAddr = "127.0.0.1:" + strconv.Itoa(conf.ServicePort+i)

	c.Peers = nil
	switch {
	case i == 0:
	case conf.Topology == TopologyStar:
		c.Peers = []string{started[0]}
	default:
		c.Peers = []string{started[i-1]}
		if conf.Topology == TopologyRing && i == conf.NbNodes-1 && i > 1 {
			c.Peers = append(c.Peers, started[0])
		}
	}

	return &c
}

func stopNetwork(engines []*meshkv.MeshKV) {
	for _, e := range engines {
		e.Shutdown()
	}
}
