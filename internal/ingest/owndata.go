package ingest

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/jsonval"
	"github.com/mesh-intelligence/graphmirror/internal/mirrorstore"
	"github.com/mesh-intelligence/graphmirror/internal/registrar"
	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// nestedParamName synthesizes the SQL parameter name for a nested-egg
// primitive column. A naive "n_F_E" concatenation would let an F containing
// the separator alias two distinct (F, E) pairs; the length prefix avoids
// that collision.
func nestedParamName(field, egg schema.Fieldname) string {
	return fmt.Sprintf("n_%d_%s_%s", len(field), field, egg)
}

func primitiveParamName(field schema.Fieldname) string {
	return "p_" + string(field)
}

func nestedPresenceParamName(field schema.Fieldname) string {
	return "presence_" + string(field)
}

// updateOwnData applies one batch of records sharing a __typename.
func updateOwnData(tx *sql.Tx, info *schema.Info, blacklist map[string]bool, updateID int64, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	typename, err := validateBatchTypename(info, records)
	if err != nil {
		return err
	}
	oi := info.Objects[typename]

	for _, record := range records {
		id, err := recordID(oi, record)
		if err != nil {
			return err
		}

		if err := store.SingleRowUpdate(tx, "UPDATE objects SET last_update = ? WHERE id = ?", updateID, id); err != nil {
			return fmt.Errorf("stamping last_update for %q: %w", id, err)
		}

		if err := updatePrimitives(tx, oi, id, record); err != nil {
			return err
		}

		if err := updateLinks(tx, info, blacklist, oi, id, record); err != nil {
			return err
		}
	}

	return nil
}

func validateBatchTypename(info *schema.Info, records []map[string]any) (schema.Typename, error) {
	var typename schema.Typename
	for i, record := range records {
		raw, ok := record["__typename"]
		if !ok {
			return "", fmt.Errorf("record %d missing \"__typename\"", i)
		}
		t, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("record %d \"__typename\" is not a string", i)
		}
		if i == 0 {
			typename = schema.Typename(t)
			if _, ok := info.Objects[typename]; !ok {
				return "", fmt.Errorf("%q is not a known OBJECT type", typename)
			}
			continue
		}
		if schema.Typename(t) != typename {
			return "", fmt.Errorf("batch has inconsistent __typename: %q and %q", typename, t)
		}
	}
	return typename, nil
}

func recordID(oi *schema.ObjectInfo, record map[string]any) (string, error) {
	idFieldname := oi.IDField
	if idFieldname == "" {
		idFieldname = "id"
	}
	raw, ok := record[string(idFieldname)]
	if !ok {
		return "", fmt.Errorf("record missing id field %q", idFieldname)
	}
	id, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("id field %q is not a string", idFieldname)
	}
	return id, nil
}

// updatePrimitives builds and executes one UPDATE primitives_T statement
// covering every top-level primitive, every nested-presence marker, and
// every nested-egg primitive column.
func updatePrimitives(tx *sql.Tx, oi *schema.ObjectInfo, id string, record map[string]any) error {
	table, err := mirrorstore.PrimitiveTableName(oi.Typename)
	if err != nil {
		return err
	}

	var setClauses []string
	var args []any

	for _, f := range oi.Primitives {
		raw, ok := record[string(f)]
		if !ok {
			return fmt.Errorf("missing required field %q for %q", f, id)
		}
		encoded, err := jsonval.Encode(raw)
		if err != nil {
			return fmt.Errorf("encoding field %q for %q: %w", f, id, err)
		}
		param := primitiveParamName(f)
		setClauses = append(setClauses, fmt.Sprintf(`"%s" = :%s`, f, param))
		args = append(args, sql.Named(param, encoded))
	}

	for _, f := range oi.Nested {
		raw, present := record[string(f)]
		presenceParam := nestedPresenceParamName(f)
		presenceCol := mirrorstore.NestedPresenceColumn(f)
		setClauses = append(setClauses, fmt.Sprintf(`"%s" = :%s`, presenceCol, presenceParam))

		eggs := oi.Eggs[f]
		if !present || raw == nil {
			args = append(args, sql.Named(presenceParam, 0))
			for _, e := range eggs.Primitives {
				param := nestedParamName(f, e)
				col := mirrorstore.NestedEggColumn(f, e)
				setClauses = append(setClauses, fmt.Sprintf(`"%s" = :%s`, col, param))
				args = append(args, sql.Named(param, nil))
			}
			continue
		}

		args = append(args, sql.Named(presenceParam, 1))
		group, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("nested field %q for %q is neither null nor an object", f, id)
		}
		for _, e := range eggs.Primitives {
			eggValue, ok := group[string(e)]
			if !ok {
				return fmt.Errorf("missing required nested egg %q.%q for %q", f, e, id)
			}
			encoded, err := jsonval.Encode(eggValue)
			if err != nil {
				return fmt.Errorf("encoding nested egg %q.%q for %q: %w", f, e, id, err)
			}
			param := nestedParamName(f, e)
			col := mirrorstore.NestedEggColumn(f, e)
			setClauses = append(setClauses, fmt.Sprintf(`"%s" = :%s`, col, param))
			args = append(args, sql.Named(param, encoded))
		}
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE "id" = :id_param`, table, join(setClauses, ", "))
	args = append(args, sql.Named("id_param", id))
	return store.SingleRowUpdate(tx, query, args...)
}

func join(items []string, sep string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

// updateLinks resolves and writes every top-level NODE field and every
// nested-egg NODE field for one record.
func updateLinks(tx *sql.Tx, info *schema.Info, blacklist map[string]bool, oi *schema.ObjectInfo, id string, record map[string]any) error {
	for _, f := range oi.Links {
		raw, ok := record[string(f)]
		if !ok {
			return fmt.Errorf("missing required link field %q for %q", f, id)
		}
		if err := writeLink(tx, info, blacklist, id, string(f), raw); err != nil {
			return err
		}
	}

	for _, f := range oi.Nested {
		eggs := oi.Eggs[f]
		if len(eggs.Nodes) == 0 {
			continue
		}
		raw, present := record[string(f)]
		var group map[string]any
		if present && raw != nil {
			group, _ = raw.(map[string]any)
		}
		for _, e := range eggs.Nodes {
			var eggValue any
			if group != nil {
				v, ok := group[string(e)]
				if !ok {
					return fmt.Errorf("missing required nested egg %q.%q for %q", f, e, id)
				}
				eggValue = v
			}
			fieldname := string(f) + "." + string(e)
			if err := writeLink(tx, info, blacklist, id, fieldname, eggValue); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeLink(tx *sql.Tx, info *schema.Info, blacklist map[string]bool, parentID, fieldname string, raw any) error {
	var result map[string]any
	if raw != nil {
		var ok bool
		result, ok = raw.(map[string]any)
		if !ok {
			return fmt.Errorf("link field %q for %q is neither null nor an object", fieldname, parentID)
		}
	}

	childID, err := registrar.RegisterNodeFieldResult(tx, info, blacklist, result)
	if err != nil {
		return fmt.Errorf("resolving link %q for %q: %w", fieldname, parentID, err)
	}

	var childArg any
	if childID != nil {
		childArg = *childID
	}
	return store.SingleRowUpdate(tx,
		"UPDATE links SET child_id = ? WHERE parent_id = ? AND fieldname = ?",
		childArg, parentID, fieldname,
	)
}
