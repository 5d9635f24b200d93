package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/graphmirror/internal/depgraph"
)

func newGraphCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "graph <id>",
		Short: "Render the extracted object graph rooted at id as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args[0], out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write DOT to this file instead of stdout")
	return cmd
}

func runGraph(cmd *cobra.Command, id, out string) error {
	m, _, err := openMirror(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	root, err := m.Extract(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", id, err)
	}

	g, err := depgraph.Build(root)
	if err != nil {
		return fmt.Errorf("building diagnostic graph: %w", err)
	}

	w := cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	return depgraph.WriteDOT(g, w)
}
