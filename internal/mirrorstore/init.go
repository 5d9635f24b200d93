package mirrorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// ErrIncompatible is returned when the on-disk meta.config blob differs
// from the fingerprint of the schema/options a Mirror was constructed with.
// This is fatal: the store is left untouched.
var ErrIncompatible = errors.New("mirrorstore: incompatible schema, options, or version")

// Initialize runs inside a single transaction: create meta if absent,
// compare or seed the fingerprint, create every structural table and
// index, and create primitives_<T> for every OBJECT type.
func Initialize(ctx context.Context, st *store.Store, info *schema.Info, opts Options) error {
	fingerprint, err := Fingerprint(info.Schema, opts)
	if err != nil {
		return fmt.Errorf("computing fingerprint: %w", err)
	}

	return st.WithTxSimple(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(createMeta); err != nil {
			return fmt.Errorf("creating meta table: %w", err)
		}

		var existing string
		err := tx.QueryRow("SELECT config FROM meta WHERE zero = 0").Scan(&existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.Exec("INSERT INTO meta (zero, config) VALUES (0, ?)", fingerprint); err != nil {
				return fmt.Errorf("seeding meta config: %w", err)
			}
		case err != nil:
			return fmt.Errorf("reading meta config: %w", err)
		case existing == fingerprint:
			return nil // already initialized, matching config: no-op.
		default:
			return ErrIncompatible
		}

		for _, ddl := range structuralDDL {
			if _, err := tx.Exec(ddl); err != nil {
				return fmt.Errorf("executing structural DDL: %w", err)
			}
		}

		for typename, oi := range info.Objects {
			if err := store.MustSQLSafe(string(typename)); err != nil {
				return fmt.Errorf("validating typename %q: %w", typename, err)
			}
			ddl, err := BuildPrimitiveTableDDL(oi)
			if err != nil {
				return fmt.Errorf("building primitives table for %q: %w", typename, err)
			}
			if _, err := tx.Exec(ddl); err != nil {
				return fmt.Errorf("creating primitives table for %q: %w", typename, err)
			}
		}
		return nil
	})
}
