package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/graphmirror/internal/mirrorstore"
)

// cliVersion is the CLI's own release version, independent of
// mirrorstore.Version (the on-disk format version).
const cliVersion = "0.1.0"

const modulePath = "github.com/mesh-intelligence/graphmirror"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the graphmirror version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "graphmirror v%s\nmodule: %s\nstore format: %s\n", cliVersion, modulePath, mirrorstore.Version)
			return nil
		},
	}
}
