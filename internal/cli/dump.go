package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nodeattrs/internal/sqlite"
)

// dumpFormat returns the --format value, or the format implied by the file
// extension when the flag is empty.
func dumpFormat(flag, file string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	if strings.EqualFold(filepath.Ext(file), ".cbor") {
		return sqlite.FormatCBOR
	}
	return sqlite.FormatJSONL
}

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write every node and attribute to a dump file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				stats, err := b.Export(args[0], dumpFormat(format, args[0]))
				if err != nil {
					return err
				}
				return a.printStats(cmd, "Exported", stats)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "dump format: jsonl or cbor (default: from extension, else jsonl)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a dump file, overwriting attributes with the same name",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				stats, err := b.Import(args[0], dumpFormat(format, args[0]))
				if err != nil {
					return err
				}
				return a.printStats(cmd, "Imported", stats)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "dump format: jsonl or cbor (default: from extension, else jsonl)")
	return cmd
}

func (a *app) printStats(cmd *cobra.Command, verb string, stats sqlite.DumpStats) error {
	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]int{"nodes": stats.Nodes, "attributes": stats.Attributes})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d nodes, %d attributes\n", verb, stats.Nodes, stats.Attributes)
	return nil
}
