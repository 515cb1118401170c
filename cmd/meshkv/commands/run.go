package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/meshkv/src/meshkv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts a meshkv node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runMeshKV,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runMeshKV(cmd *cobra.Command, args []string) error {
	engine := meshkv.NewMeshKV(&_config.MeshKV)

	if err := engine.Init(); err != nil {
		_config.MeshKV.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	//Prepare sigCh to relay SIGINT and SIGTERM system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			_config.MeshKV.Logger().Debug("Reacting to signal - TERMINATE")
			engine.Shutdown()
		case <-engine.Node.Done():
		}
	}()

	engine.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().StringP("datadir", "d", _config.MeshKV.DataDir, "Top-level directory for configuration")
	cmd.Flags().String("log", _config.MeshKV.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.MeshKV.LogFile, "Also write logs to this file")

	// Record
	cmd.Flags().StringP("record", "r", _config.MeshKV.Record, "key:value record owned by this node")

	// Network
	cmd.Flags().StringP("listen", "l", _config.MeshKV.BindAddr, "Listen IP:Port for meshkv node")
	cmd.Flags().StringP("advertise", "a", _config.MeshKV.AdvertiseAddr, "Advertise IP:Port for meshkv node")
	cmd.Flags().StringSliceP("connect", "c", _config.MeshKV.Peers, "IP:Port of an initial peer (repeatable)")
	cmd.Flags().DurationP("timeout", "t", _config.MeshKV.TCPTimeout, "TCP Timeout")
	cmd.Flags().String("wire", _config.MeshKV.WireFormat, "Envelope format sent to peers (line, json)")
	cmd.Flags().Int("fanout-limit", _config.MeshKV.FanoutLimit, "Max concurrent calls of an aggregate query (0 for no limit)")

	// Dedup
	cmd.Flags().Int("dedup-capacity", _config.MeshKV.DedupCapacity, "Max number of request ids remembered")
	cmd.Flags().Duration("dedup-ttl", _config.MeshKV.DedupTTL, "How long request ids are remembered")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.MeshKV.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().Bool("no-service", _config.MeshKV.NoService, "Disable HTTP service")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	logFields := logrus.Fields{
		"meshkv.DataDir":       _config.MeshKV.DataDir,
		"meshkv.LogLevel":      _config.MeshKV.LogLevel,
		"meshkv.LogFile":       _config.MeshKV.LogFile,
		"meshkv.Record":        _config.MeshKV.Record,
		"meshkv.BindAddr":      _config.MeshKV.BindAddr,
		"meshkv.AdvertiseAddr": _config.MeshKV.AdvertiseAddr,
		"meshkv.Peers":         _config.MeshKV.Peers,
		"meshkv.TCPTimeout":    _config.MeshKV.TCPTimeout,
		"meshkv.WireFormat":    _config.MeshKV.WireFormat,
		"meshkv.FanoutLimit":   _config.MeshKV.FanoutLimit,
		"meshkv.DedupCapacity": _config.MeshKV.DedupCapacity,
		"meshkv.DedupTTL":      _config.MeshKV.DedupTTL,
		"meshkv.NoService":     _config.MeshKV.NoService,
	}

	if !_config.MeshKV.NoService {
		logFields["meshkv.ServiceAddr"] = _config.MeshKV.ServiceAddr
	}

	_config.MeshKV.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/meshkv.toml (.json, .yaml also work)
	viper.SetConfigName("meshkv")               // name of config file (without extension)
	viper.AddConfigPath(_config.MeshKV.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.MeshKV.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.MeshKV.Logger().Debugf("No config file found in: %s", _config.MeshKV.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// rebuild the logger with the final level and log file
	_config.MeshKV.SetLogger(nil)

	return nil
}
