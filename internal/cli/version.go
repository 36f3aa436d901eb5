package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kvconf/pkg/kvconf"
)

const modulePath = "github.com/mesh-intelligence/kvconf"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kvconf version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "kvconf v%s\nmodule: %s\n", kvconf.Version, modulePath)
			return nil
		},
	}
}
