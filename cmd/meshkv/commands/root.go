package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for meshkv
var RootCmd = &cobra.Command{
	Use:              "meshkv",
	Short:            "peer-to-peer mesh of single-record key-value nodes",
	TraverseChildren: true,
}
