package ingest

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/registrar"
	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// ErrNoSuchConnection is returned when the target (object_id, fieldname)
// has no connections row -- it should have been created at registration
// time.
var ErrNoSuchConnection = errors.New("ingest: no such connection")

// updateConnection appends ordered entries and overwrites the connections
// row's pageInfo/totalCount.
func updateConnection(tx *sql.Tx, info *schema.Info, blacklist map[string]bool, updateID int64, objectID string, fieldname schema.Fieldname, payload any) error {
	var connectionID int64
	err := tx.QueryRow(
		"SELECT rowid FROM connections WHERE object_id = ? AND fieldname = ?",
		objectID, string(fieldname),
	).Scan(&connectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s.%s", ErrNoSuchConnection, objectID, fieldname)
	}
	if err != nil {
		return fmt.Errorf("looking up connection %s.%s: %w", objectID, fieldname, err)
	}

	m, ok := payload.(map[string]any)
	if !ok {
		return fmt.Errorf("connection payload for %s.%s is not an object", objectID, fieldname)
	}

	totalCount, err := intField(m, "totalCount")
	if err != nil {
		return err
	}
	pageInfo, ok := m["pageInfo"].(map[string]any)
	if !ok {
		return fmt.Errorf("connection %s.%s missing pageInfo", objectID, fieldname)
	}
	hasNextPage, ok := pageInfo["hasNextPage"].(bool)
	if !ok {
		return fmt.Errorf("connection %s.%s pageInfo.hasNextPage is not a bool", objectID, fieldname)
	}
	var endCursor any
	if ec, ok := pageInfo["endCursor"]; ok {
		endCursor = ec
	}

	hasNextPageInt := 0
	if hasNextPage {
		hasNextPageInt = 1
	}

	if err := store.SingleRowUpdate(tx,
		"UPDATE connections SET last_update = ?, total_count = ?, has_next_page = ?, end_cursor = ? WHERE rowid = ?",
		updateID, totalCount, hasNextPageInt, endCursor, connectionID,
	); err != nil {
		return fmt.Errorf("overwriting connection %s.%s: %w", objectID, fieldname, err)
	}

	nextIdx, err := nextConnectionIdx(tx, connectionID)
	if err != nil {
		return err
	}

	nodesRaw, _ := m["nodes"].([]any)
	for _, node := range nodesRaw {
		var result map[string]any
		if node != nil {
			result, ok = node.(map[string]any)
			if !ok {
				return fmt.Errorf("connection %s.%s node is neither null nor an object", objectID, fieldname)
			}
		}

		childID, err := registrar.RegisterNodeFieldResult(tx, info, blacklist, result)
		if err != nil {
			return fmt.Errorf("resolving connection %s.%s entry: %w", objectID, fieldname, err)
		}

		var childArg any
		if childID != nil {
			childArg = *childID
		}
		if _, err := tx.Exec(
			"INSERT INTO connection_entries (connection_id, idx, child_id) VALUES (?, ?, ?)",
			connectionID, nextIdx, childArg,
		); err != nil {
			return fmt.Errorf("inserting connection entry for %s.%s: %w", objectID, fieldname, err)
		}
		nextIdx++
	}

	return nil
}

func nextConnectionIdx(tx *sql.Tx, connectionID int64) (int, error) {
	var max sql.NullInt64
	if err := tx.QueryRow("SELECT MAX(idx) FROM connection_entries WHERE connection_id = ?", connectionID).Scan(&max); err != nil {
		return 0, fmt.Errorf("computing next connection index: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

func intField(m map[string]any, key string) (int64, error) {
	raw, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("field %q is not numeric, got %T", key, raw)
	}
}
