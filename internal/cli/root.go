// Package cli implements the kvconf command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	xlog "github.com/mesh-intelligence/kvconf/internal/log"
	"github.com/mesh-intelligence/kvconf/internal/paths"
	"github.com/mesh-intelligence/kvconf/pkg/kvconf"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// app holds global flag values and the loaded configuration shared by all
// subcommands of one invocation.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	cfg *viper.Viper
}

// NewRootCmd creates the top-level "kvconf" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "kvconf",
		Short:         "A typed key-value configuration store",
		Long:          "kvconf stores typed configuration values (bool, int, float, decimal,\nstring, json) and returns them with their original type.",
		Version:       kvconf.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.kvconf-db)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newSetCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newDeleteCmd(a))

	return root
}

// Execute runs the root command with args and returns the exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "kvconf:", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// load resolves the configuration directory, reads config.yaml and
// configures logging. The version and help commands need none of it.
func (a *app) load(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "version", "help":
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return sysError("%w", err)
	}
	a.cfg = v

	xlog.Configure(xlog.Config{
		Level:  v.GetString(cfgKeyLogLevel),
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// storeConfig builds the Store configuration from config.yaml and flags.
func (a *app) storeConfig() (types.Config, error) {
	var cfg types.Config
	if err := a.cfg.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}

	dataDir, err := paths.ResolveDataDir(a.dataDir, cfg.DataDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	return cfg, nil
}

// openStore opens the configured Store. The caller must Close it.
func (a *app) openStore() (*kvconf.Store, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, sysError("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, userError("invalid config: %w", err)
	}

	s, err := kvconf.Open(cfg, kvconf.WithLogger(xlog.WithComponent("store")))
	if err != nil {
		return nil, sysError("open store: %w", err)
	}
	return s, nil
}
