package cli

import (
	"database/sql"
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var typename string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered objects, optionally filtered by type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, typename)
		},
	}
	cmd.Flags().StringVar(&typename, "type", "", "restrict the listing to one OBJECT typename")
	return cmd
}

func runList(cmd *cobra.Command, typename string) error {
	m, _, err := openMirror(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	query := "SELECT id, typename, last_update FROM objects"
	var args []any
	if typename != "" {
		query += " WHERE typename = ?"
		args = append(args, typename)
	}
	query += " ORDER BY typename, id"

	rows, err := m.Store().Query(cmd.Context(), query, args...)
	if err != nil {
		return fmt.Errorf("listing objects: %w", err)
	}
	defer rows.Close()

	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader([]string{"ID", "TYPE", "FRESH"})
	count := 0
	for rows.Next() {
		var id, objTypename string
		var lastUpdate sql.NullInt64
		if err := rows.Scan(&id, &objTypename, &lastUpdate); err != nil {
			return err
		}
		fresh := color.New(color.FgRed).Sprint("no")
		if lastUpdate.Valid {
			fresh = color.New(color.FgGreen).Sprint("yes")
		}
		tw.Append([]string{id, objTypename, fresh})
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	tw.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "%d object(s)\n", count)
	return nil
}
