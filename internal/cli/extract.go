package cli

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/graphmirror/internal/depgraph"
)

func newExtractCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "extract <id>",
		Short: "Build and print the in-memory object graph rooted at id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write JSON to this file instead of stdout")
	return cmd
}

func runExtract(cmd *cobra.Command, id, out string) error {
	m, _, err := openMirror(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	root, err := m.Extract(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", id, err)
	}

	// A mirrored object graph is legitimately cyclic (that's the point of
	// mirroring a graph rather than a tree), but JSON has no notion of a
	// back-reference: encoding a cycle would recurse into it forever. Catch
	// that case up front rather than hanging, and point at the diagnostic
	// command that can actually render it.
	if depgraph.HasCycle(root) {
		return fmt.Errorf("extracting %s: object graph contains a cycle and cannot be encoded as JSON; use `graphmirror graph %s` to render it as DOT instead", id, id)
	}

	encoded := oj.JSON(root, &oj.Options{Sort: true, Indent: 2})
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), encoded)
		return nil
	}
	return os.WriteFile(out, []byte(encoded+"\n"), 0o644)
}
