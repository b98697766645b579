package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nodeattrs/internal/sqlite"
	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize nodeattrs storage",
		Long:  "Create the configuration and data directories, write config.yaml if missing,\nand create the container file with its root node.",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	written, err := writeConfigIfMissing(a.configDir, fileConfig{
		Backend: types.BackendSQLite,
		DataDir: a.flags.dataDir,
	})
	if err != nil {
		return sysError(err)
	}

	dataDir, err := a.resolveDataDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	// Attach creates the data directory, schema and root node; Detach
	// flushes and closes the file.
	backend := sqlite.NewBackend(sqlite.WithLogger(a.log))
	if err := backend.Attach(types.Config{Backend: a.cfg.Backend, DataDir: dataDir}); err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := backend.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"config_dir":     a.configDir,
			"data_dir":       dataDir,
			"config_written": written,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized nodeattrs in %s\n", dataDir)
	return nil
}
