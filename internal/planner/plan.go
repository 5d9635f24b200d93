// Package planner implements the outdated finder and query planner:
// discovering which objects and connections need refreshing, and compiling
// that discovery into a single batched selection-set tree.
package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/optional"
	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// ObjectRef names one object the plan wants own-data for.
type ObjectRef struct {
	Typename schema.Typename
	ID       string
}

// ConnectionRef names one connection the plan wants a page for.
type ConnectionRef struct {
	ObjectTypename schema.Typename
	ObjectID       string
	Fieldname      schema.Fieldname
	EndCursor      optional.Cursor
}

// Plan describes the outdated work discovered by FindOutdated.
type Plan struct {
	Objects     []ObjectRef
	Connections []ConnectionRef
	// Typenames is reserved and must always be empty in this core; a
	// non-empty value is a hard error.
	Typenames []schema.Typename
}

// IsEmpty reports whether the plan has no outdated work at all -- the
// update loop's convergence condition.
func (p *Plan) IsEmpty() bool {
	return len(p.Objects) == 0 && len(p.Connections) == 0
}

// ErrReservedTypenames is returned if a Plan somehow carries non-empty
// Typenames, which this core reserves and forbids.
var ErrReservedTypenames = errors.New("planner: Typenames must be empty in this core")

// FindOutdated reports an object as outdated if it has never been updated
// or its last update predates since; a connection is outdated if it has a
// next page, has never been fetched, or its last update predates since.
func FindOutdated(ctx context.Context, st *store.Store, since int64) (*Plan, error) {
	plan := &Plan{}

	err := store.PluckAll(ctx, st.DB(), `
		SELECT o.id, o.typename
		FROM objects o
		LEFT JOIN updates u ON o.last_update = u.rowid
		WHERE o.last_update IS NULL OR u.time_epoch_millis < ?
	`, func(rows *sql.Rows) error {
		var id, typename string
		if err := rows.Scan(&id, &typename); err != nil {
			return err
		}
		plan.Objects = append(plan.Objects, ObjectRef{Typename: schema.Typename(typename), ID: id})
		return nil
	}, since)
	if err != nil {
		return nil, fmt.Errorf("finding outdated objects: %w", err)
	}

	err = store.PluckAll(ctx, st.DB(), `
		SELECT o.typename, c.object_id, c.fieldname, c.last_update, c.end_cursor
		FROM connections c
		JOIN objects o ON o.id = c.object_id
		LEFT JOIN updates u ON c.last_update = u.rowid
		WHERE c.has_next_page = 1 OR c.last_update IS NULL OR u.time_epoch_millis < ?
	`, func(rows *sql.Rows) error {
		var typename, objectID, fieldname string
		var lastUpdate sql.NullInt64
		var endCursor sql.NullString
		if err := rows.Scan(&typename, &objectID, &fieldname, &lastUpdate, &endCursor); err != nil {
			return err
		}
		var cursor optional.Cursor
		switch {
		case !lastUpdate.Valid:
			cursor = optional.UnknownCursor()
		case !endCursor.Valid:
			cursor = optional.KnownNullCursor()
		default:
			cursor = optional.KnownCursor(endCursor.String)
		}
		plan.Connections = append(plan.Connections, ConnectionRef{
			ObjectTypename: schema.Typename(typename),
			ObjectID:       objectID,
			Fieldname:      schema.Fieldname(fieldname),
			EndCursor:      cursor,
		})
		return nil
	}, since)
	if err != nil {
		return nil, fmt.Errorf("finding outdated connections: %w", err)
	}

	if len(plan.Typenames) > 0 {
		return nil, ErrReservedTypenames
	}

	return plan, nil
}
