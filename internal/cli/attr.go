package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nodeattrs/internal/sqlite"
	"github.com/mesh-intelligence/nodeattrs/pkg/types"
)

func newSetCmd(a *app) *cobra.Command {
	var vf valueFlags
	var hexName bool
	cmd := &cobra.Command{
		Use:   "set <node> <name> <value>",
		Short: "Create or overwrite an attribute",
		Long: "Store a value under a name on a node, replacing any existing attribute.\n" +
			"The value is JSON: a number or boolean is a scalar, a nested array keeps its\n" +
			"shape, and anything else is stored as text.",
		Args: exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := parseName(args[1], hexName)
			if err != nil {
				return err
			}
			value, err := parseValue(args[2], vf)
			if err != nil {
				return err
			}
			return a.withBackend(func(b *sqlite.Backend) error {
				node, err := b.Group(args[0])
				if err != nil {
					return err
				}
				if err := node.Attrs().Set(name, value); err != nil {
					return err
				}
				key, err := types.ResolveName(name)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), newValueJSON(key, value))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s on %s: %s %s\n", key, node.Path(), value.DType(), value.Shape())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&vf.dtype, "dtype", "", "element type (int8..uint64, float32, float64, bool, str)")
	cmd.Flags().StringVar(&vf.shape, "shape", "", "comma-separated dimensions, e.g. 2,3 or 1")
	cmd.Flags().BoolVar(&hexName, "hex-name", false, "read the name as hex-encoded bytes")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var hexName bool
	cmd := &cobra.Command{
		Use:   "get <node> <name>",
		Short: "Print an attribute value",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := parseName(args[1], hexName)
			if err != nil {
				return err
			}
			return a.withBackend(func(b *sqlite.Backend) error {
				node, err := b.Group(args[0])
				if err != nil {
					return err
				}
				value, err := node.Attrs().Get(name)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					key, err := types.ResolveName(name)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), newValueJSON(key, value))
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&hexName, "hex-name", false, "read the name as hex-encoded bytes")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var hexName bool
	cmd := &cobra.Command{
		Use:   "delete <node> <name>",
		Short: "Delete an attribute",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := parseName(args[1], hexName)
			if err != nil {
				return err
			}
			return a.withBackend(func(b *sqlite.Backend) error {
				node, err := b.Group(args[0])
				if err != nil {
					return err
				}
				if err := node.Attrs().Delete(name); err != nil {
					return err
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[1], "node": node.Path()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from %s\n", args[1], node.Path())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&hexName, "hex-name", false, "read the name as hex-encoded bytes")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <node>",
		Short: "List the attributes of a node in creation order",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b *sqlite.Backend) error {
				node, err := b.Group(args[0])
				if err != nil {
					return err
				}
				attrs := node.Attrs()
				keys, err := attrs.Keys()
				if err != nil {
					return err
				}

				out := make([]valueJSON, 0, len(keys))
				for _, key := range keys {
					value, err := attrs.Get(key)
					if err != nil {
						return err
					}
					out = append(out, newValueJSON(key, value))
				}

				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, v := range out {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.DType, types.Shape(v.Shape))
				}
				return tw.Flush()
			})
		},
	}
}
