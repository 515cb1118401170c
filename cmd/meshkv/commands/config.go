package commands

import (
	"github.com/mosaicnetworks/meshkv/src/config"
)

//CLIConfig contains configuration for the Run command
type CLIConfig struct {
	MeshKV config.Config `mapstructure:",squash"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		MeshKV: *config.NewDefaultConfig(),
	}
}
