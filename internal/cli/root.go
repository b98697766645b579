// Package cli implements the nodeattrs command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nodeattrs/internal/logging"
	"github.com/mesh-intelligence/nodeattrs/internal/paths"
	"github.com/mesh-intelligence/nodeattrs/internal/sqlite"
	"github.com/mesh-intelligence/nodeattrs/pkg/nodeattrs"
	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
	user      bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags rootFlags

	// configDir is the resolved configuration directory and cfg the
	// config.yaml loaded from it. Both are set by PersistentPreRunE.
	configDir string
	cfg       fileConfig
	log       zerolog.Logger
}

// NewRootCmd creates the top-level "nodeattrs" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:     "nodeattrs",
		Short:   "Typed, shape-preserving attributes on container nodes",
		Version: nodeattrs.Version,
		Long: "nodeattrs stores named attributes on the nodes of a hierarchical container.\n" +
			"Values keep their element type and shape, including rank-0 and (1,) arrays.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.nodeattrs)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.nodeattrs-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	root.PersistentFlags().BoolVar(&a.flags.user, "user", false, "default to per-user platform directories instead of the working directory")

	root.SetFlagErrorFunc(flagError)

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newSetCmd(a),
		newGetCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
		newGroupCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "nodeattrs:", err)
	}
	return ExitCode(err)
}

func (a *app) scope() paths.Scope {
	if a.flags.user {
		return paths.ScopeUser
	}
	return paths.ScopeProject
}

// setup resolves the config directory, loads config.yaml and builds the
// logger. Log level precedence: --log-level > NODEATTRS_LOG_LEVEL >
// config.yaml log_level > profile default.
func (a *app) setup(stderr io.Writer) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir, a.scope())
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return userError(err)
	}
	a.configDir = configDir
	a.cfg = cfg

	logCfg := logging.Load(logging.ProfileRuntime)
	level := a.flags.logLevel
	if level == "" && os.Getenv(logging.EnvLogLevel) == "" {
		level = cfg.LogLevel
	}
	if level != "" {
		lvl, ok := logging.ParseLevel(level)
		if !ok {
			return userError(fmt.Errorf("unknown log level %q", level))
		}
		logCfg.Level = lvl
	}
	a.log = logging.New(logCfg, stderr)
	return nil
}

// resolveDataDir returns the data directory following the precedence
// --data-dir > config.yaml data_dir > NODEATTRS_DATA_DIR > scope default.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.cfg.DataDir, a.scope())
}

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer backend.Detach().
func (a *app) attachBackend() (*sqlite.Backend, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	cfg := types.Config{
		Backend: a.cfg.Backend,
		DataDir: dataDir,
	}
	if err := cfg.Validate(); err != nil {
		return nil, userError(fmt.Errorf("config %s: %w", cfg.Backend, err))
	}

	backend := sqlite.NewBackend(sqlite.WithLogger(a.log))
	if err := backend.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach backend: %w", err))
	}
	return backend, nil
}

// withBackend attaches, runs fn, and detaches.
func (a *app) withBackend(fn func(b *sqlite.Backend) error) error {
	b, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer b.Detach()
	return fn(b)
}
