// Package ingest implements the update ingester: applying one GraphQL
// query response transactionally to the store -- primitives, links, and
// connection pages.
package ingest

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

const (
	ownDataPrefix   = "owndata_"
	connectionPrefix = "node_"
)

// nodesPath picks the "nodes" list out of a decoded response section
// generically -- the section's shape varies by which bucket built it, the
// dynamic-data case ojg/jp is meant for.
var nodesPath = jp.C("nodes")

// Ingest applies one query response to the store. It is called inside the
// transaction the update loop driver already opened; it does not open its
// own transaction.
func Ingest(tx *sql.Tx, info *schema.Info, blacklist map[string]bool, updateID int64, result map[string]any) error {
	for key, value := range result {
		switch {
		case strings.HasPrefix(key, ownDataPrefix):
			records, err := ownDataRecords(value)
			if err != nil {
				return fmt.Errorf("ingest: %s: %w", key, err)
			}
			if err := updateOwnData(tx, info, blacklist, updateID, records); err != nil {
				return fmt.Errorf("ingest: %s: %w", key, err)
			}
		case strings.HasPrefix(key, connectionPrefix):
			if err := ingestNodeSection(tx, info, blacklist, updateID, value); err != nil {
				return fmt.Errorf("ingest: %s: %w", key, err)
			}
		default:
			return fmt.Errorf("ingest: unexpected top-level key %q (must start with %q or %q)", key, ownDataPrefix, connectionPrefix)
		}
	}
	return nil
}

// ownDataRecords extracts the "nodes" list of one owndata_<i> section.
func ownDataRecords(value any) ([]map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", value)
	}
	raw, _ := nodesPath.First(m).([]any)
	records := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue // a nodes(ids:) miss: the id did not resolve remotely.
		}
		rm, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object in nodes list, got %T", r)
		}
		records = append(records, rm)
	}
	return records, nil
}

// ingestNodeSection dispatches a node_<i> section: for each sub-field name
// that is not "id", call updateConnection.
func ingestNodeSection(tx *sql.Tx, info *schema.Info, blacklist map[string]bool, updateID int64, value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected an object, got %T", value)
	}
	rawID, ok := m["id"]
	if !ok {
		return fmt.Errorf("node section missing \"id\"")
	}
	objectID, ok := rawID.(string)
	if !ok {
		return fmt.Errorf("node section \"id\" is not a string")
	}

	for fieldname, payload := range m {
		if fieldname == "id" {
			continue
		}
		if err := updateConnection(tx, info, blacklist, updateID, objectID, schema.Fieldname(fieldname), payload); err != nil {
			return fmt.Errorf("connection %s.%s: %w", objectID, fieldname, err)
		}
	}
	return nil
}
