package config

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/meshkv/src/common"
	"github.com/mosaicnetworks/meshkv/src/ledger"
	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/mosaicnetworks/meshkv/src/record"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultBindAddr      = "127.0.0.1:1337"
	DefaultServiceAddr   = "127.0.0.1:8000"
	DefaultTCPTimeout    = 2000 * time.Millisecond
	DefaultDedupCapacity = ledger.DefaultCapacity
	DefaultDedupTTL      = ledger.DefaultTTL
	DefaultWireFormat    = string(proto.JSONFormat)
	DefaultFanoutLimit   = 0
)

var (
	// ErrNoRecord is returned when no record is configured.
	ErrNoRecord = errors.New("no record configured, use --record key:value")

	// ErrBadWireFormat is returned for an unknown envelope format.
	ErrBadWireFormat = errors.New("wire format must be line or json")

	// ErrBadTimeout is returned when TCPTimeout is not positive.
	ErrBadTimeout = errors.New("timeout must be positive")
)

// Config contains all the configuration properties of a meshkv node.
type Config struct {
	// DataDir is the top-level directory containing meshkv configuration.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of every log entry.
	LogFile string `mapstructure:"log-file"`

	// BindAddr is the local address:port where this node accepts client and
	// peer connections. Port 0 picks a free port.
	BindAddr string `mapstructure:"listen"`

	// AdvertiseAddr is the address other nodes use to reach this node. It is
	// also the identity of the node in traces. Defaults to the bound address.
	AdvertiseAddr string `mapstructure:"advertise"`

	// Record is the key:value record owned by this node.
	Record string `mapstructure:"record"`

	// Peers are the host:port addresses of the initial neighbours.
	Peers []string `mapstructure:"connect"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the optional HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	// TCPTimeout bounds dialing, writing and reading of every outbound call.
	TCPTimeout time.Duration `mapstructure:"timeout"`

	// DedupCapacity is the max number of request ids remembered.
	DedupCapacity int `mapstructure:"dedup-capacity"`

	// DedupTTL is how long a request id is remembered. Zero or less keeps ids
	// until they are evicted by capacity.
	DedupTTL time.Duration `mapstructure:"dedup-ttl"`

	// WireFormat selects the encoding of outbound peer envelopes, line or
	// json. Both are accepted inbound.
	WireFormat string `mapstructure:"wire"`

	// FanoutLimit bounds the number of concurrent calls of an aggregate
	// query. Zero or less means no limit.
	FanoutLimit int `mapstructure:"fanout-limit"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:       DefaultDataDir(),
		LogLevel:      DefaultLogLevel,
		BindAddr:      DefaultBindAddr,
		ServiceAddr:   DefaultServiceAddr,
		TCPTimeout:    DefaultTCPTimeout,
		DedupCapacity: DefaultDedupCapacity,
		DedupTTL:      DefaultDedupTTL,
		WireFormat:    DefaultWireFormat,
		FanoutLimit:   DefaultFanoutLimit,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests. It binds to a free loopback port and does not
// start the HTTP service.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.BindAddr = "127.0.0.1:0"
	config.NoService = true
	config.TCPTimeout = time.Second
	config.logger = common.NewTestLogger(t, level)
	return config
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Record == "" {
		return ErrNoRecord
	}

	if _, err := record.Parse(c.Record); err != nil {
		return err
	}

	if _, err := proto.ParseWireFormat(c.WireFormat); err != nil {
		return ErrBadWireFormat
	}

	if c.TCPTimeout <= 0 {
		return ErrBadTimeout
	}

	return nil
}

// Wire returns the configured envelope format, falling back to the default
// one when the value is not valid.
func (c *Config) Wire() proto.WireFormat {
	f, err := proto.ParseWireFormat(c.WireFormat)
	if err != nil {
		return proto.JSONFormat
	}
	return f
}

// SetLogger replaces the logger of the node.
func (c *Config) SetLogger(logger *logrus.Logger) {
	c.logger = logger
}

// Logger returns a formatted logrus Entry, with prefix set to "meshkv".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			pathMap := lfshook.PathMap{}
			for _, l := range logrus.AllLevels {
				pathMap[l] = c.LogFile
			}
			c.logger.Hooks.Add(lfshook.NewHook(
				pathMap,
				&logrus.TextFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "meshkv")
}

// PeersFile returns the full path of the optional peers.json file.
func (c *Config) PeersFile() string {
	return filepath.Join(c.DataDir, "peers.json")
}

// DefaultDataDir return the default directory name for top-level meshkv config
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".MeshKV")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "MeshKV")
		} else {
			return filepath.Join(home, ".meshkv")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
