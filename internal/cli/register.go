package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <typename> <id>",
		Short: "Register a root object the update loop should track",
		Args:  cobra.ExactArgs(2),
		RunE:  runRegister,
	}
}

func runRegister(cmd *cobra.Command, args []string) error {
	m, _, err := openMirror(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	typename, id := schema.Typename(args[0]), args[1]
	if err := m.RegisterObject(cmd.Context(), typename, id); err != nil {
		return fmt.Errorf("registering %s %s: %w", typename, id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "registered %s %s\n", typename, id)
	return nil
}
