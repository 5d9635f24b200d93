package planner

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

func fixture(t *testing.T) (*store.Store, *schema.Info) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.sqlite")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	sch := schema.Schema{
		"Person": schema.NewObjectType(map[schema.Fieldname]schema.FieldType{
			"id":      schema.NewIDField(),
			"name":    schema.NewPrimitiveField(),
			"reports": schema.NewConnectionField("Person", schema.Faithful),
		}),
	}
	info, err := schema.Compile(sch)
	require.NoError(t, err)
	require.NoError(t, mirrorstore.Initialize(context.Background(), s, info, mirrorstore.Options{}))
	return s, info
}

func insertUpdate(t *testing.T, s *store.Store, epochMillis int64) int64 {
	t.Helper()
	var id int64
	require.NoError(t, s.WithTxSimple(context.Background(), func(tx *sql.Tx) error {
		res, err := tx.Exec("INSERT INTO updates (time_epoch_millis) VALUES (?)", epochMillis)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	}))
	return id
}

func TestFindOutdatedNeverFetched(t *testing.T) {
	s, info := fixture(t)
	ctx := context.Background()
	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p1"))

	plan, err := FindOutdated(ctx, s, 0)
	require.NoError(t, err)
	require.False(t, plan.IsEmpty())
	require.Len(t, plan.Objects, 1)
	require.Equal(t, "p1", plan.Objects[0].ID)

	require.Len(t, plan.Connections, 1)
	require.True(t, plan.Connections[0].EndCursor.IsUnknown())
}

func TestFindOutdatedRespectsSince(t *testing.T) {
	s, info := fixture(t)
	ctx := context.Background()
	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p1"))

	updateID := insertUpdate(t, s, 1000)
	require.NoError(t, s.WithTxSimple(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE objects SET last_update = ? WHERE id = ?", updateID, "p1")
		if err != nil {
			return err
		}
		_, err = tx.Exec("UPDATE connections SET last_update = ?, total_count = 0, has_next_page = 0 WHERE object_id = ?", updateID, "p1")
		return err
	}))

	plan, err := FindOutdated(ctx, s, 500)
	require.NoError(t, err)
	require.True(t, plan.IsEmpty(), "fetched after `since` must not be outdated")

	plan, err = FindOutdated(ctx, s, 2000)
	require.NoError(t, err)
	require.False(t, plan.IsEmpty(), "fetched before `since` must be outdated")
}

func TestFindOutdatedConnectionWithNextPage(t *testing.T) {
	s, info := fixture(t)
	ctx := context.Background()
	require.NoError(t, registrar.Register(ctx, s, info, "Person", "p1"))

	updateID := insertUpdate(t, s, 1000)
	require.NoError(t, s.WithTxSimple(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE objects SET last_update = ? WHERE id = ?", updateID, "p1")
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			"UPDATE connections SET last_update = ?, total_count = 5, has_next_page = 1, end_cursor = ? WHERE object_id = ?",
			updateID, "cur-1", "p1")
		return err
	}))

	plan, err := FindOutdated(ctx, s, 500)
	require.NoError(t, err)
	require.Empty(t, plan.Objects, "own data fetched after since is not outdated")
	require.Len(t, plan.Connections, 1, "a connection with a next page is always outdated")
	cursor, ok := plan.Connections[0].EndCursor.Get()
	require.True(t, ok)
	value, ok := cursor.Get()
	require.True(t, ok)
	require.Equal(t, "cur-1", value)
}
