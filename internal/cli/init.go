package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kvconf/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize kvconf storage",
		Long:  "Create the configuration directory and config.yaml if missing, then create the configured store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(a.configDir)
			if err != nil {
				return sysError("resolve config dir: %w", err)
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Close(); err != nil {
				return sysError("close store: %w", err)
			}

			cfg, err := a.storeConfig()
			if err != nil {
				return sysError("%w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "kvconf initialized successfully")
			fmt.Fprintln(out, "  config: ", configDir)
			fmt.Fprintln(out, "  backend:", cfg.Backend)
			fmt.Fprintln(out, "  data:   ", cfg.DataDir)
			return nil
		},
	}
}
