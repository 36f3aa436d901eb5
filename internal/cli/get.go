package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

var errKeyNotFound = errors.New("key not found")

func newGetCmd(a *app) *cobra.Command {
	var (
		defaultRaw string
		typeName   string
	)
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Long: `Get prints the value stored under key. When the key is missing the
--default value (parsed with --type) is printed instead; without a default a
missing key is an error.

Attach negative defaults with "=", and put keys starting with "-" after "--".

Examples:
  kvconf get api_key
  kvconf get level --type int --default=-1
  kvconf get --json -- -weird-key`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var def types.Value
			if cmd.Flags().Changed("default") {
				v, err := parseValue(defaultRaw, typeName)
				if err != nil {
					return userError("default: %w", err)
				}
				def = v
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			v, err := s.Get(key, def)
			if err != nil {
				if errors.Is(err, types.ErrDecode) {
					return userError("get %q: %w", key, err)
				}
				return sysError("get %q: %w", key, err)
			}
			if v.IsAbsent() {
				return userError("%q: %w", key, errKeyNotFound)
			}

			if a.jsonMode {
				return writeEntry(cmd, key, v)
			}
			text, err := formatText(v)
			if err != nil {
				return sysError("format %q: %w", key, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&defaultRaw, "default", "", "value printed when the key is missing")
	cmd.Flags().StringVar(&typeName, "type", string(types.TagString), "type of the --default value")
	return cmd
}

// writeEntry prints {"key","type","value"} for v.
func writeEntry(cmd *cobra.Command, key string, v types.Value) error {
	jv, err := jsonValue(v)
	if err != nil {
		return sysError("format %q: %w", key, err)
	}
	out, err := json.MarshalIndent(entry{Key: key, Type: v.Tag(), Value: jv}, "", "  ")
	if err != nil {
		return sysError("marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
