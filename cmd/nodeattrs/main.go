// Command nodeattrs manages typed attributes on the nodes of a container.
package main

import (
	"os"

	"github.com/mesh-intelligence/nodeattrs/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
