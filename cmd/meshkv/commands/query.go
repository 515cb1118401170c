package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/mosaicnetworks/meshkv/src/config"
	"github.com/mosaicnetworks/meshkv/src/net"
	"github.com/mosaicnetworks/meshkv/src/proto"
	"github.com/spf13/cobra"
)

//NewQueryCmd returns the command that sends one command line to a node and
//prints the reply
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query [command...]",
		Short:   "Send a command to a node",
		Example: "  meshkv query --addr 127.0.0.1:1337 get-value 3",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runQuery,
	}
	AddQueryFlags(cmd)
	return cmd
}

//AddQueryFlags adds flags to the Query command
func AddQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", config.DefaultBindAddr, "IP:Port of the node")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTCPTimeout, "TCP Timeout")
}

func runQuery(cmd *cobra.Command, args []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	reply, err := query(addr, strings.Join(args, " "), timeout)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply)

	if proto.IsErrorReply(reply) {
		return fmt.Errorf("%s", reply)
	}

	return nil
}

func query(addr, line string, timeout time.Duration) (string, error) {
	return net.Query(addr, line, timeout)
}
