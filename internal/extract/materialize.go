package extract

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/graphmirror/internal/jsonval"
	"github.com/mesh-intelligence/graphmirror/internal/mirrorstore"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// CorruptionError reports a stored value that violates an invariant the
// ingester is supposed to maintain -- e.g. a presence marker outside
// {NULL, 0, 1}. Its appearance indicates on-disk corruption, not a normal
// runtime condition.
type CorruptionError struct {
	Detail string
}

func (e *CorruptionError) Error() string {
	return "extract: corrupt store: " + e.Detail
}

// materializeOwnData fills in, for every dependency, every top-level
// primitive, every nested-field presence marker, and every present nested
// field's egg values.
func materializeOwnData(tx *sql.Tx, info *schema.Info, tempTable string, deps []depEdge, arena map[string]map[string]any) error {
	byTypename := make(map[schema.Typename][]string)
	for _, d := range deps {
		byTypename[schema.Typename(d.typename)] = append(byTypename[schema.Typename(d.typename)], d.id)
	}

	for typename := range byTypename {
		oi, ok := info.Objects[typename]
		if !ok {
			return fmt.Errorf("extract: closure references unknown type %q", typename)
		}
		if err := materializeOneType(tx, oi, tempTable, arena); err != nil {
			return err
		}
	}
	return nil
}

func materializeOneType(tx *sql.Tx, oi *schema.ObjectInfo, tempTable string, arena map[string]map[string]any) error {
	table, err := mirrorstore.PrimitiveTableName(oi.Typename)
	if err != nil {
		return err
	}

	cols := []string{`p."id"`}
	for _, f := range oi.Primitives {
		cols = append(cols, fmt.Sprintf(`p."%s"`, f))
	}
	for _, f := range oi.Nested {
		cols = append(cols, fmt.Sprintf(`p."%s"`, mirrorstore.NestedPresenceColumn(f)))
		for _, e := range oi.Eggs[f].Primitives {
			cols = append(cols, fmt.Sprintf(`p."%s"`, mirrorstore.NestedEggColumn(f, e)))
		}
	}

	query := fmt.Sprintf(
		`SELECT %s FROM %s p JOIN %s t ON t.id = p."id" WHERE t.typename = ?`,
		strings.Join(cols, ", "), table, tempTable,
	)
	rows, err := tx.Query(query, string(oi.Typename))
	if err != nil {
		return fmt.Errorf("materializing %s own data: %w", oi.Typename, err)
	}
	defer rows.Close()

	for rows.Next() {
		dest := make([]any, len(cols))
		for i := range dest {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scanning %s own data: %w", oi.Typename, err)
		}

		id, ok := (*dest[0].(*any)).(string)
		if !ok {
			return &CorruptionError{Detail: fmt.Sprintf("%s.id is not a string", oi.Typename)}
		}
		obj := arena[id]

		idx := 1
		for _, f := range oi.Primitives {
			decoded, err := decodeJSONColumn(*dest[idx].(*any))
			if err != nil {
				return fmt.Errorf("decoding %s.%s for %q: %w", oi.Typename, f, id, err)
			}
			obj[string(f)] = decoded
			idx++
		}
		for _, f := range oi.Nested {
			presence := *dest[idx].(*any)
			idx++
			eggCount := len(oi.Eggs[f].Primitives)

			present, err := presenceBool(oi.Typename, f, presence)
			if err != nil {
				idx += eggCount
				return err
			}
			if !present {
				obj[string(f)] = nil
				idx += eggCount
				continue
			}
			group := make(map[string]any, eggCount)
			for _, e := range oi.Eggs[f].Primitives {
				decoded, err := decodeJSONColumn(*dest[idx].(*any))
				if err != nil {
					return fmt.Errorf("decoding %s.%s.%s for %q: %w", oi.Typename, f, e, id, err)
				}
				group[string(e)] = decoded
				idx++
			}
			for _, e := range oi.Eggs[f].Nodes {
				// Filled in by materializeLinks; leave a placeholder so the
				// key exists on the group even if no link row ever writes it.
				group[string(e)] = nil
			}
			obj[string(f)] = group
		}
	}
	return rows.Err()
}

func presenceBool(typename schema.Typename, field schema.Fieldname, raw any) (bool, error) {
	if raw == nil {
		return false, &CorruptionError{Detail: fmt.Sprintf("%s.%s presence marker is NULL after freshness check passed", typename, field)}
	}
	switch v := raw.(type) {
	case int64:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case int:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	}
	return false, &CorruptionError{Detail: fmt.Sprintf("%s.%s presence marker is %v, want 0 or 1", typename, field, raw)}
}

func decodeJSONColumn(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return nil, fmt.Errorf("expected a TEXT column, got %T", raw)
	}
	return jsonval.Decode(s)
}

// materializeLinks attaches, for every links row whose parent is in the
// closure, the resolved child to the parent's top-level field or
// nested-egg group.
func materializeLinks(tx *sql.Tx, info *schema.Info, tempTable string, arena map[string]map[string]any) error {
	rows, err := tx.Query(fmt.Sprintf(
		`SELECT links.parent_id, links.fieldname, links.child_id
		 FROM links JOIN %s t ON t.id = links.parent_id`, tempTable,
	))
	if err != nil {
		return fmt.Errorf("materializing links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID, fieldname string
		var childID sql.NullString
		if err := rows.Scan(&parentID, &fieldname, &childID); err != nil {
			return err
		}

		parent := arena[parentID]
		var childValue any
		if childID.Valid {
			child, ok := arena[childID.String]
			if !ok {
				return &CorruptionError{Detail: fmt.Sprintf("link %s.%s points at %q, which is outside the extracted closure", parentID, fieldname, childID.String)}
			}
			childValue = child
		}

		if field, egg, ok := strings.Cut(fieldname, "."); ok {
			group, _ := parent[field].(map[string]any)
			if group == nil {
				continue // nested group absent: silently drop.
			}
			group[egg] = childValue
		} else {
			parent[fieldname] = childValue
		}
	}
	return rows.Err()
}

// materializeConnections attaches, for every connection attached to a
// dependency, the plain ordered list of its resolved entries.
func materializeConnections(tx *sql.Tx, tempTable string, arena map[string]map[string]any) error {
	rows, err := tx.Query(fmt.Sprintf(
		`SELECT connections.rowid, connections.object_id, connections.fieldname
		 FROM connections JOIN %s t ON t.id = connections.object_id
		 ORDER BY connections.object_id, connections.fieldname`, tempTable,
	))
	if err != nil {
		return fmt.Errorf("materializing connections: %w", err)
	}

	type connMeta struct {
		rowID     int64
		objectID  string
		fieldname string
	}
	var conns []connMeta
	for rows.Next() {
		var c connMeta
		if err := rows.Scan(&c.rowID, &c.objectID, &c.fieldname); err != nil {
			rows.Close()
			return err
		}
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, c := range conns {
		entryRows, err := tx.Query(
			`SELECT child_id FROM connection_entries WHERE connection_id = ? ORDER BY idx ASC`,
			c.rowID,
		)
		if err != nil {
			return fmt.Errorf("materializing connection %s.%s entries: %w", c.objectID, c.fieldname, err)
		}

		nodes := []any{}
		for entryRows.Next() {
			var childID sql.NullString
			if err := entryRows.Scan(&childID); err != nil {
				entryRows.Close()
				return err
			}
			if !childID.Valid {
				nodes = append(nodes, nil)
				continue
			}
			child, ok := arena[childID.String]
			if !ok {
				entryRows.Close()
				return &CorruptionError{Detail: fmt.Sprintf("connection %s.%s entry points at %q, which is outside the extracted closure", c.objectID, c.fieldname, childID.String)}
			}
			nodes = append(nodes, child)
		}
		if err := entryRows.Err(); err != nil {
			entryRows.Close()
			return err
		}
		entryRows.Close()

		parent := arena[c.objectID]
		parent[c.fieldname] = nodes
	}
	return nil
}
