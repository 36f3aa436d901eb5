package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

func newSetCmd(a *app) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a typed value under a key",
		Long: `Set stores value under key, replacing any previous value and type.

Values starting with "-" would be read as flags; put them after "--".

Examples:
  kvconf set enabled true --type bool
  kvconf set price 19.99 --type decimal
  kvconf set level --type int -- -3
  kvconf set stats '{"count": 42, "avg": 3.14}' --type json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, raw := args[0], args[1]

			v, err := parseValue(raw, typeName)
			if err != nil {
				return userError("%w", err)
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SetValue(key, v); err != nil {
				if errors.Is(err, types.ErrUnsupportedType) {
					return userError("set %q: %w", key, err)
				}
				return sysError("set %q: %w", key, err)
			}

			if a.jsonMode {
				return writeEntry(cmd, key, v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s (%s)\n", key, v.Tag())
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, "type", string(types.TagString), "value type: bool, int, float, decimal, string, json")
	return cmd
}
