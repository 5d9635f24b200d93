package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/graphmirror/internal/loop"
	"github.com/mesh-intelligence/graphmirror/internal/transport"
)

func newUpdateCmd() *cobra.Command {
	var endpoint string
	var since int64
	var headers map[string]string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Run the update loop against a GraphQL endpoint until convergence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, endpoint, since, headers)
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "GraphQL endpoint URL to post the batched update query to")
	cmd.Flags().Int64Var(&since, "since", 0, "epoch millis: objects/connections updated at or after this are considered fresh")
	cmd.Flags().StringToStringVar(&headers, "header", nil, "extra HTTP header to send with every request (repeatable, key=value)")
	cmd.MarkFlagRequired("endpoint")
	return cmd
}

func runUpdate(cmd *cobra.Command, endpoint string, since int64, headers map[string]string) error {
	m, _, err := openMirror(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	t := transport.HTTP{Endpoint: endpoint, Headers: headers}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("updating mirror"),
		progressbar.OptionSetWriter(cmd.OutOrStderr()),
		progressbar.OptionSpinnerType(14),
	)
	defer bar.Finish()

	onStep := func(stats loop.StepStats) {
		bar.Add(1)
		fmt.Fprintf(cmd.OutOrStdout(), "\nstep %d: %d object(s), %d connection(s) scheduled\n",
			stats.StepNumber, stats.ObjectsScheduled, stats.ConnectionsScheduled)
	}

	err = m.Update(cmd.Context(), loop.Transport(t.Post), since, func() int64 { return time.Now().UnixMilli() }, onStep)
	if err != nil {
		return fmt.Errorf("running update loop: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "mirror converged")
	return nil
}
