// Package extract implements the extractor: reconstruction of a
// possibly-cyclic object graph, rooted at a given id, by recursive SQL
// closure over the store.
package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// ErrRootNotFound is returned when rootID is absent from the store
// entirely.
var ErrRootNotFound = errors.New("extract: root object not found")

// FreshnessError reports a transitive dependency lacking own-data or
// connection data.
type FreshnessError struct {
	ObjectID string
	// What names what is stale: "own data" or "<fieldname> connection".
	What string
}

func (e *FreshnessError) Error() string {
	return fmt.Sprintf("extract: %s of %q is not fresh", e.What, e.ObjectID)
}

// depEdge is one row of the temp transitive-dependency table.
type depEdge struct {
	id       string
	typename string
}

// Extract builds a temp closure table, checks freshness, materializes
// every reachable object's own data, then fills in links and connection
// entries in two further passes over a shared arena so the result may
// contain cycles.
func Extract(ctx context.Context, st *store.Store, info *schema.Info, rootID string) (map[string]any, error) {
	var arena map[string]map[string]any

	err := st.WithTxSimple(ctx, func(tx *sql.Tx) error {
		tableName, err := store.NextTempTableName(tx, "tmp_transitive_dependencies")
		if err != nil {
			return err
		}

		if _, err := tx.Exec(fmt.Sprintf(
			`CREATE TEMP TABLE %s (id TEXT PRIMARY KEY, typename TEXT NOT NULL)`, tableName,
		)); err != nil {
			return fmt.Errorf("creating temp closure table: %w", err)
		}
		// Guaranteed cleanup even on early return.
		defer tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName))

		deps, err := populateClosure(tx, tableName, rootID)
		if err != nil {
			return err
		}
		if len(deps) == 0 {
			return ErrRootNotFound
		}

		if err := checkFreshness(tx, deps); err != nil {
			return err
		}

		arena = make(map[string]map[string]any, len(deps))
		for _, d := range deps {
			arena[d.id] = map[string]any{"id": d.id, "__typename": d.typename}
		}

		if err := materializeOwnData(tx, info, tableName, deps, arena); err != nil {
			return err
		}
		if err := materializeLinks(tx, info, tableName, arena); err != nil {
			return err
		}
		if err := materializeConnections(tx, tableName, arena); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	root, ok := arena[rootID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRootNotFound, rootID)
	}
	return root, nil
}

// populateClosure runs a recursive CTE computing the transitive closure
// over links (child_id IS NOT NULL) union connection_entries (child_id IS
// NOT NULL), seeded at rootID, then copies the closed set (joined with
// objects for typename) into the temp table.
func populateClosure(tx *sql.Tx, tableName, rootID string) ([]depEdge, error) {
	_, err := tx.Exec(fmt.Sprintf(`
		INSERT INTO %s (id, typename)
		WITH RECURSIVE closure(id) AS (
			SELECT ?
			UNION
			SELECT l.child_id
			FROM closure c
			JOIN links l ON l.parent_id = c.id AND l.child_id IS NOT NULL
			UNION
			SELECT ce.child_id
			FROM closure c
			JOIN connections conn ON conn.object_id = c.id
			JOIN connection_entries ce ON ce.connection_id = conn.rowid AND ce.child_id IS NOT NULL
		)
		SELECT closure.id, objects.typename
		FROM closure
		JOIN objects ON objects.id = closure.id
	`, tableName), rootID)
	if err != nil {
		return nil, fmt.Errorf("populating transitive closure: %w", err)
	}

	rows, err := tx.Query(fmt.Sprintf("SELECT id, typename FROM %s", tableName))
	if err != nil {
		return nil, fmt.Errorf("reading transitive closure: %w", err)
	}
	defer rows.Close()

	var deps []depEdge
	for rows.Next() {
		var d depEdge
		if err := rows.Scan(&d.id, &d.typename); err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

// checkFreshness verifies every dependency has own data, and every
// connection attached to it has connection data.
func checkFreshness(tx *sql.Tx, deps []depEdge) error {
	for _, d := range deps {
		var lastUpdate sql.NullInt64
		if err := tx.QueryRow("SELECT last_update FROM objects WHERE id = ?", d.id).Scan(&lastUpdate); err != nil {
			return fmt.Errorf("checking freshness of %q: %w", d.id, err)
		}
		if !lastUpdate.Valid {
			return &FreshnessError{ObjectID: d.id, What: "own data"}
		}

		rows, err := tx.Query("SELECT fieldname, last_update FROM connections WHERE object_id = ?", d.id)
		if err != nil {
			return fmt.Errorf("checking connection freshness of %q: %w", d.id, err)
		}
		for rows.Next() {
			var fieldname string
			var connLastUpdate sql.NullInt64
			if err := rows.Scan(&fieldname, &connLastUpdate); err != nil {
				rows.Close()
				return err
			}
			if !connLastUpdate.Valid {
				rows.Close()
				return &FreshnessError{ObjectID: d.id, What: fieldname + " connection"}
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}
