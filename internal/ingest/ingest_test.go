package ingest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/graphmirror/internal/mirrorstore"
	"github.com/mesh-intelligence/graphmirror/internal/registrar"
	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

func openTestMirror(t *testing.T) (*store.Store, *schema.Info) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.sqlite")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	address, err := schema.NewNestedField(map[schema.Fieldname]schema.FieldType{
		"country": schema.NewPrimitiveField(),
		"manager": schema.NewNodeField("Person", schema.Faithful),
	})
	require.NoError(t, err)

	sch := schema.Schema{
		"Person": schema.NewObjectType(map[schema.Fieldname]schema.FieldType{
			"id":       schema.NewIDField(),
			"name":     schema.NewPrimitiveField(),
			"employer": schema.NewNodeField("Company", schema.Faithful),
			"reports":  schema.NewConnectionField("Person", schema.Faithful),
			"address":  address,
		}),
		"Company": schema.NewObjectType(map[schema.Fieldname]schema.FieldType{
			"id":   schema.NewIDField(),
			"name": schema.NewPrimitiveField(),
		}),
	}
	info, err := schema.Compile(sch)
	require.NoError(t, err)
	require.NoError(t, mirrorstore.Initialize(context.Background(), s, info, mirrorstore.Options{}))
	return s, info
}

func TestIngestOwnDataAndLink(t *testing.T) {
	s, info := openTestMirror(t)
	ctx := context.Background()

	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p1"))

	err := s.WithTxSimple(ctx, func(tx *sql.Tx) error {
		return Ingest(tx, info, nil, 100, map[string]any{
			"owndata_1": map[string]any{
				"nodes": []any{
					map[string]any{
						"__typename": "Person",
						"id":         "p1",
						"name":       "Ada",
						"employer": map[string]any{
							"__typename": "Company",
							"id":         "c1",
						},
						"address": nil,
					},
				},
			},
		})
	})
	require.NoError(t, err)

	var name string
	require.NoError(t, s.QueryRow(ctx, `SELECT "name" FROM primitives_Person WHERE "id" = ?`, "p1").Scan(&name))
	require.Equal(t, `"Ada"`, name)

	var childID string
	require.NoError(t, s.QueryRow(ctx, `SELECT child_id FROM links WHERE parent_id = ? AND fieldname = 'employer'`, "p1").Scan(&childID))
	require.Equal(t, "c1", childID)

	var typename string
	require.NoError(t, s.QueryRow(ctx, `SELECT typename FROM objects WHERE id = ?`, "c1").Scan(&typename))
	require.Equal(t, "Company", typename)

	var lastUpdate sql.NullInt64
	require.NoError(t, s.QueryRow(ctx, `SELECT last_update FROM objects WHERE id = ?`, "p1").Scan(&lastUpdate))
	require.True(t, lastUpdate.Valid)
	require.Equal(t, int64(100), lastUpdate.Int64)
}

func TestIngestNestedPresenceRoundTrip(t *testing.T) {
	s, info := openTestMirror(t)
	ctx := context.Background()
	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p1"))

	ingestOne := func(address any) {
		err := s.WithTxSimple(ctx, func(tx *sql.Tx) error {
			return Ingest(tx, info, nil, 1, map[string]any{
				"owndata_1": map[string]any{
					"nodes": []any{
						map[string]any{
							"__typename": "Person",
							"id":         "p1",
							"name":       "Ada",
							"employer":   nil,
							"address":    address,
						},
					},
				},
			})
		})
		require.NoError(t, err)
	}

	ingestOne(nil)
	var presence sql.NullInt64
	require.NoError(t, s.QueryRow(ctx, `SELECT "address" FROM primitives_Person WHERE "id" = ?`, "p1").Scan(&presence))
	require.True(t, presence.Valid)
	require.Equal(t, int64(0), presence.Int64)

	ingestOne(map[string]any{"country": "US", "manager": nil})
	require.NoError(t, s.QueryRow(ctx, `SELECT "address" FROM primitives_Person WHERE "id" = ?`, "p1").Scan(&presence))
	require.Equal(t, int64(1), presence.Int64)

	var country string
	require.NoError(t, s.QueryRow(ctx, `SELECT "address.country" FROM primitives_Person WHERE "id" = ?`, "p1").Scan(&country))
	require.Equal(t, `"US"`, country)
}

func TestIngestConnectionPagination(t *testing.T) {
	s, info := openTestMirror(t)
	ctx := context.Background()
	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p1"))

	err := s.WithTxSimple(ctx, func(tx *sql.Tx) error {
		return Ingest(tx, info, nil, 1, map[string]any{
			"node_1": map[string]any{
				"id": "p1",
				"reports": map[string]any{
					"totalCount": float64(2),
					"pageInfo":   map[string]any{"hasNextPage": true, "endCursor": "cursor-1"},
					"nodes": []any{
						map[string]any{"__typename": "Person", "id": "p2", "name": "Bob"},
					},
				},
			},
		})
	})
	require.NoError(t, err)

	var totalCount, hasNextPage int64
	var endCursor string
	require.NoError(t, s.QueryRow(ctx,
		`SELECT total_count, has_next_page, end_cursor FROM connections WHERE object_id = ? AND fieldname = 'reports'`,
		"p1").Scan(&totalCount, &hasNextPage, &endCursor))
	require.Equal(t, int64(2), totalCount)
	require.Equal(t, int64(1), hasNextPage)
	require.Equal(t, "cursor-1", endCursor)

	var idx int
	var childID string
	require.NoError(t, s.QueryRow(ctx,
		`SELECT idx, child_id FROM connection_entries ce JOIN connections c ON c.rowid = ce.connection_id WHERE c.object_id = ?`,
		"p1").Scan(&idx, &childID))
	require.Equal(t, 1, idx)
	require.Equal(t, "p2", childID)

	// Appending a second page must continue idx rather than restart it.
	err = s.WithTxSimple(ctx, func(tx *sql.Tx) error {
		return Ingest(tx, info, nil, 2, map[string]any{
			"node_1": map[string]any{
				"id": "p1",
				"reports": map[string]any{
					"totalCount": float64(2),
					"pageInfo":   map[string]any{"hasNextPage": false, "endCursor": nil},
					"nodes": []any{
						map[string]any{"__typename": "Person", "id": "p3", "name": "Cid"},
					},
				},
			},
		})
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, s.QueryRow(ctx,
		`SELECT COUNT(*) FROM connection_entries ce JOIN connections c ON c.rowid = ce.connection_id WHERE c.object_id = ?`,
		"p1").Scan(&count))
	require.Equal(t, 2, count)
}

func TestIngestConnectionMissingRowFails(t *testing.T) {
	s, info := openTestMirror(t)
	ctx := context.Background()

	err := s.WithTxSimple(ctx, func(tx *sql.Tx) error {
		return Ingest(tx, info, nil, 1, map[string]any{
			"node_1": map[string]any{
				"id": "ghost",
				"reports": map[string]any{
					"totalCount": float64(0),
					"pageInfo":   map[string]any{"hasNextPage": false},
					"nodes":      []any{},
				},
			},
		})
	})
	require.ErrorIs(t, err, ErrNoSuchConnection)
}
