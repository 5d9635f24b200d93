package extract

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/graphmirror/internal/ingest"
	"github.com/mesh-intelligence/graphmirror/internal/mirrorstore"
	"github.com/mesh-intelligence/graphmirror/internal/registrar"
	"github.com/mesh-intelligence/graphmirror/internal/store"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

func openFixture(t *testing.T) (*store.Store, *schema.Info) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.sqlite")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	sch := schema.Schema{
		"Person": schema.NewObjectType(map[schema.Fieldname]schema.FieldType{
			"id":       schema.NewIDField(),
			"name":     schema.NewPrimitiveField(),
			"employer": schema.NewNodeField("Company", schema.Faithful),
			"reports":  schema.NewConnectionField("Person", schema.Faithful),
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

func TestExtractRootNotFound(t *testing.T) {
	s, info := openFixture(t)
	_, err := Extract(context.Background(), s, info, "missing")
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestExtractFreshnessViolation(t *testing.T) {
	s, info := openFixture(t)
	ctx := context.Background()
	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p1"))

	_, err := Extract(ctx, s, info, "p1")
	var target *FreshnessError
	require.ErrorAs(t, err, &target)
	require.Equal(t, "p1", target.ObjectID)
	require.Equal(t, "own data", target.What)
}

func TestExtractOwnDataLinkAndConnectionRoundTrip(t *testing.T) {
	s, info := openFixture(t)
	ctx := context.Background()
	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p1"))

	err := s.WithTxSimple(ctx, func(tx *sql.Tx) error {
		if err := ingest.Ingest(tx, info, nil, 1, map[string]any{
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
					},
				},
			},
		}); err != nil {
			return err
		}
		if err := ingest.Ingest(tx, info, nil, 1, map[string]any{
			"owndata_1": map[string]any{
				"nodes": []any{
					map[string]any{
						"__typename": "Company",
						"id":         "c1",
						"name":       "Acme",
					},
				},
			},
		}); err != nil {
			return err
		}
		return ingest.Ingest(tx, info, nil, 1, map[string]any{
			"node_1": map[string]any{
				"id": "p1",
				"reports": map[string]any{
					"totalCount": float64(1),
					"pageInfo":   map[string]any{"hasNextPage": false, "endCursor": nil},
					"nodes": []any{
						map[string]any{"__typename": "Person", "id": "p2", "name": "Bob"},
					},
				},
			},
		})
	})
	require.NoError(t, err)

	// p2 was discovered as a connection entry but never itself fetched, so
	// it is still in the closure and must fail freshness before p1 can
	// resolve without it -- register+ingest it too.
	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p2"))
	err = s.WithTxSimple(ctx, func(tx *sql.Tx) error {
		return ingest.Ingest(tx, info, nil, 2, map[string]any{
			"owndata_1": map[string]any{
				"nodes": []any{
					map[string]any{
						"__typename": "Person",
						"id":         "p2",
						"name":       "Bob",
						"employer":   nil,
					},
				},
			},
			"node_1": map[string]any{
				"id": "p2",
				"reports": map[string]any{
					"totalCount": float64(0),
					"pageInfo":   map[string]any{"hasNextPage": false, "endCursor": nil},
					"nodes":      []any{},
				},
			},
		})
	})
	require.NoError(t, err)

	graph, err := Extract(ctx, s, info, "p1")
	require.NoError(t, err)

	require.Equal(t, "p1", graph["id"])
	require.Equal(t, "Person", graph["__typename"])
	require.Equal(t, "Ada", graph["name"])

	employer, ok := graph["employer"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "c1", employer["id"])
	require.Equal(t, "Acme", employer["name"])

	reports, ok := graph["reports"].([]any)
	require.True(t, ok)
	require.Len(t, reports, 1)
	first := reports[0].(map[string]any)
	require.Equal(t, "p2", first["id"])
	require.Equal(t, "Bob", first["name"])
}
