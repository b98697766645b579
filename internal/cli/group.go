package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nodeattrs/internal/sqlite"
)

func newGroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Create, delete and list container nodes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <path>",
			Short: "Create a node under an existing parent",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withBackend(func(b *sqlite.Backend) error {
					node, err := b.CreateGroup(args[0])
					if err != nil {
						return err
					}
					if a.flags.jsonMode {
						return writeJSON(cmd.OutOrStdout(), map[string]string{"path": node.Path(), "node_id": string(node.ID())})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", node.Path())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <path>",
			Short: "Delete a node, its descendants and their attributes",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withBackend(func(b *sqlite.Backend) error {
					if err := b.DeleteGroup(args[0]); err != nil {
						return err
					}
					if a.flags.jsonMode {
						return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List node paths",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withBackend(func(b *sqlite.Backend) error {
					groups, err := b.Groups()
					if err != nil {
						return err
					}
					if a.flags.jsonMode {
						return writeJSON(cmd.OutOrStdout(), groups)
					}
					for _, p := range groups {
						fmt.Fprintln(cmd.OutOrStdout(), p)
					}
					return nil
				})
			},
		},
	)
	return cmd
}
