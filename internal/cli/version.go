package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nodeattrs/pkg/nodeattrs"
)

const modulePath = "github.com/mesh-intelligence/nodeattrs"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the nodeattrs version",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "nodeattrs v%s\nmodule: %s\n", nodeattrs.Version, modulePath)
			return nil
		},
	}
}
