package mirrorstore

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// PrimitiveTableName returns the primitives_<T> table name for typename,
// after validating it is SQL-safe.
func PrimitiveTableName(typename schema.Typename) (string, error) {
	if err := store.MustSQLSafe(string(typename)); err != nil {
		return "", err
	}
	return "primitives_" + string(typename), nil
}

// NestedPresenceColumn returns the presence-marker column name for a NESTED
// field: NULL = unknown, 0 = absent, 1 = present.
func NestedPresenceColumn(field schema.Fieldname) string {
	return string(field)
}

// NestedEggColumn returns the "F.E" column name for a nested-egg primitive.
func NestedEggColumn(field, egg schema.Fieldname) string {
	return string(field) + "." + string(egg)
}

// BuildPrimitiveTableDDL synthesizes CREATE TABLE primitives_<T> (...) for
// one OBJECT type: one id column, one column per top-level PRIMITIVE field,
// one presence-marker column per top-level NESTED field, and one "F.E"
// column per (NESTED F, PRIMITIVE egg E) pair.
// Every interpolated identifier is validated with store.MustSQLSafe first.
func BuildPrimitiveTableDDL(oi *schema.ObjectInfo) (string, error) {
	table, err := PrimitiveTableName(oi.Typename)
	if err != nil {
		return "", err
	}

	var cols []string
	cols = append(cols, `"id" TEXT PRIMARY KEY REFERENCES objects(id)`)

	for _, f := range oi.Primitives {
		if err := store.MustSQLSafe(string(f)); err != nil {
			return "", err
		}
		cols = append(cols, fmt.Sprintf(`"%s" TEXT`, f))
	}

	for _, f := range oi.Nested {
		if err := store.MustSQLSafe(string(f)); err != nil {
			return "", err
		}
		cols = append(cols, fmt.Sprintf(`"%s" INTEGER CHECK ("%s" IS NULL OR "%s" IN (0, 1))`, f, f, f))

		eggs := oi.Eggs[f]
		for _, e := range eggs.Primitives {
			if err := store.MustSQLSafe(string(e)); err != nil {
				return "", err
			}
			col := NestedEggColumn(f, e)
			cols = append(cols, fmt.Sprintf(`"%s" TEXT`, col))
		}
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n);", table, strings.Join(cols, ",\n\t"))
	return ddl, nil
}
