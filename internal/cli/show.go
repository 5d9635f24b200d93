package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/graphmirror/internal/jsonval"
	"github.com/mesh-intelligence/graphmirror/internal/mirrorstore"
	"github.com/mesh-intelligence/graphmirror/pkg/mirror"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one object's own data, links, and connections",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	m, _, err := openMirror(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	id := args[0]
	ctx := cmd.Context()

	var typename string
	var lastUpdate sql.NullInt64
	err = m.Store().QueryRow(ctx, "SELECT typename, last_update FROM objects WHERE id = ?", id).Scan(&typename, &lastUpdate)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no such object: %s", id)
	}
	if err != nil {
		return fmt.Errorf("looking up %s: %w", id, err)
	}

	oi, ok := m.Info().Objects[schema.Typename(typename)]
	if !ok {
		return fmt.Errorf("show: %s has unknown type %q", id, typename)
	}

	freshness := color.New(color.FgRed).Sprint("stale")
	if lastUpdate.Valid {
		freshness = color.New(color.FgGreen).Sprint("fresh")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  (%s)  %s\n\n", color.New(color.FgHiCyan).Sprint(id), typename, freshness)

	if err := showPrimitives(cmd, m, oi, id); err != nil {
		return err
	}
	if err := showLinks(cmd, m, id); err != nil {
		return err
	}
	return showConnections(cmd, m, id)
}

func showPrimitives(cmd *cobra.Command, m *mirror.Mirror, oi *schema.ObjectInfo, id string) error {
	if len(oi.Primitives) == 0 {
		return nil
	}
	table, err := mirrorstore.PrimitiveTableName(oi.Typename)
	if err != nil {
		return err
	}

	cols := make([]string, len(oi.Primitives))
	for i, f := range oi.Primitives {
		cols[i] = fmt.Sprintf(`"%s"`, f)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE "id" = ?`, joinCols(cols), table)
	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = new(any)
	}
	if err := m.Store().QueryRow(cmd.Context(), query, id).Scan(dest...); err != nil {
		return fmt.Errorf("reading own data: %w", err)
	}

	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader([]string{"FIELD", "VALUE"})
	for i, f := range oi.Primitives {
		raw := *dest[i].(*any)
		value := "NULL"
		if raw != nil {
			s, _ := raw.(string)
			decoded, err := jsonval.Decode(s)
			if err == nil {
				value = fmt.Sprintf("%v", decoded)
			}
		}
		tw.Append([]string{string(f), value})
	}
	tw.Render()
	return nil
}

func showLinks(cmd *cobra.Command, m *mirror.Mirror, id string) error {
	rows, err := m.Store().Query(cmd.Context(), "SELECT fieldname, child_id FROM links WHERE parent_id = ? ORDER BY fieldname", id)
	if err != nil {
		return fmt.Errorf("reading links: %w", err)
	}
	defer rows.Close()

	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader([]string{"LINK", "CHILD ID"})
	for rows.Next() {
		var fieldname string
		var childID sql.NullString
		if err := rows.Scan(&fieldname, &childID); err != nil {
			return err
		}
		value := "null"
		if childID.Valid {
			value = childID.String
		}
		tw.Append([]string{fieldname, value})
	}
	tw.Render()
	return rows.Err()
}

func showConnections(cmd *cobra.Command, m *mirror.Mirror, id string) error {
	rows, err := m.Store().Query(cmd.Context(),
		"SELECT fieldname, total_count, has_next_page, last_update FROM connections WHERE object_id = ? ORDER BY fieldname", id)
	if err != nil {
		return fmt.Errorf("reading connections: %w", err)
	}
	defer rows.Close()

	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader([]string{"CONNECTION", "TOTAL", "HAS NEXT PAGE", "FRESH"})
	for rows.Next() {
		var fieldname string
		var totalCount, hasNextPage, lastUpdate sql.NullInt64
		if err := rows.Scan(&fieldname, &totalCount, &hasNextPage, &lastUpdate); err != nil {
			return err
		}
		fresh := color.New(color.FgRed).Sprint("no")
		if lastUpdate.Valid {
			fresh = color.New(color.FgGreen).Sprint("yes")
		}
		tw.Append([]string{
			fieldname,
			fmt.Sprintf("%v", nullableInt(totalCount)),
			fmt.Sprintf("%v", nullableInt(hasNextPage) == int64(1)),
			fresh,
		})
	}
	tw.Render()
	return rows.Err()
}

func nullableInt(n sql.NullInt64) int64 {
	if !n.Valid {
		return 0
	}
	return n.Int64
}

func joinCols(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
