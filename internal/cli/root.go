// Package cli implements the graphmirror command-line interface: a thin
// cobra/viper front end over pkg/mirror, with the root command, global
// flags, and one subcommand per package file.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir  string
	dataDir    string
	schemaFile string
	jsonMode   bool
}

var flags rootFlags

// NewRootCmd creates the top-level "graphmirror" command with global flags
// and every subcommand registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "graphmirror",
		Short: "A durable, incremental local cache of a remote GraphQL object graph",
		Long: "graphmirror maintains a SQLite-backed mirror of a subset of a remote\n" +
			"GraphQL object graph: register roots, run the update loop against a\n" +
			"GraphQL endpoint, and extract the resulting in-memory object graph.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform-specific)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory holding the SQLite database")
	root.PersistentFlags().StringVar(&flags.schemaFile, "schema", "", "path to the schema descriptor JSON file")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON where supported")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newRegisterCmd())
	root.AddCommand(newUpdateCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newGraphCmd())

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
