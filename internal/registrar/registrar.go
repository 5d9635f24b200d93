// Package registrar implements the object registrar: inserting a new (id,
// typename) plus its empty rows in the link/connection/primitive tables,
// and the blacklist-aware node-field-result helper the ingester uses to
// resolve references.
//
// Check existing state, then insert-or-fail inside a transaction.
package registrar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/mirrorstore"
	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// ErrTypenameConflict is returned when an id is re-registered under a
// different typename than it already has. Typenames are immutable once an
// id has been registered.
var ErrTypenameConflict = errors.New("registrar: object already registered under a different typename")

// ErrUnknownObjectType is returned when the typename is absent from the
// schema or is not OBJECT.
var ErrUnknownObjectType = errors.New("registrar: typename is not a known OBJECT type")

// Register declares a root or referenced object, transactionally.
func Register(ctx context.Context, st *store.Store, info *schema.Info, typename schema.Typename, id string) error {
	return st.WithTxSimple(ctx, func(tx *sql.Tx) error {
		return RegisterNonTx(tx, info, typename, id)
	})
}

// RegisterNonTx registers an object for use inside a caller-owned
// transaction (the ingester registers referenced nodes this way, without
// opening a nested transaction).
func RegisterNonTx(tx *sql.Tx, info *schema.Info, typename schema.Typename, id string) error {
	var existing string
	err := tx.QueryRow("SELECT typename FROM objects WHERE id = ?", id).Scan(&existing)
	switch {
	case err == nil:
		if existing != string(typename) {
			return fmt.Errorf("%w: id %q has typename %q, not %q", ErrTypenameConflict, id, existing, typename)
		}
		return nil // no-op: already registered with the same typename.
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking existing registration for %q: %w", id, err)
	}

	oi, ok := info.Objects[typename]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownObjectType, typename)
	}

	if _, err := tx.Exec("INSERT INTO objects (id, typename, last_update) VALUES (?, ?, NULL)", id, typename); err != nil {
		return fmt.Errorf("inserting object %q: %w", id, err)
	}

	table, err := mirrorstore.PrimitiveTableName(typename)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s ("id") VALUES (?)`, table), id); err != nil {
		return fmt.Errorf("inserting primitives row for %q: %w", id, err)
	}

	for _, fieldname := range oi.LinkFieldnames() {
		if _, err := tx.Exec(
			"INSERT INTO links (parent_id, fieldname, child_id) VALUES (?, ?, NULL)",
			id, fieldname,
		); err != nil {
			return fmt.Errorf("inserting link row %s.%s for %q: %w", typename, fieldname, id, err)
		}
	}

	for _, fieldname := range oi.Connections {
		if _, err := tx.Exec(
			"INSERT INTO connections (object_id, fieldname, last_update, total_count, has_next_page, end_cursor) VALUES (?, ?, NULL, NULL, NULL, NULL)",
			id, fieldname,
		); err != nil {
			return fmt.Errorf("inserting connection row %s.%s for %q: %w", typename, fieldname, id, err)
		}
	}

	return nil
}

// RegisterNodeFieldResult resolves an inline node-field result into a
// registered id: nil -> nil; blacklisted id -> nil (the reference is
// silently severed); otherwise register and return the id.
func RegisterNodeFieldResult(tx *sql.Tx, info *schema.Info, blacklist map[string]bool, result map[string]any) (*string, error) {
	if result == nil {
		return nil, nil
	}

	rawID, ok := result["id"]
	if !ok {
		return nil, fmt.Errorf("registrar: node field result missing \"id\"")
	}
	id, ok := rawID.(string)
	if !ok {
		return nil, fmt.Errorf("registrar: node field result \"id\" is not a string")
	}

	if blacklist[id] {
		return nil, nil
	}

	rawTypename, ok := result["__typename"]
	if !ok {
		return nil, fmt.Errorf("registrar: node field result missing \"__typename\"")
	}
	typename, ok := rawTypename.(string)
	if !ok {
		return nil, fmt.Errorf("registrar: node field result \"__typename\" is not a string")
	}

	if err := RegisterNonTx(tx, info, schema.Typename(typename), id); err != nil {
		return nil, err
	}
	return &id, nil
}
