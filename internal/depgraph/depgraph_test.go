package depgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildWalksLinksAndConnections(t *testing.T) {
	root := map[string]any{
		"id":         "p1",
		"__typename": "Person",
		"name":       "Ada",
		"employer": map[string]any{
			"id":         "c1",
			"__typename": "Company",
			"name":       "Acme",
		},
		"reports": []any{
			map[string]any{"id": "p2", "__typename": "Person", "name": "Bob"},
		},
	}

	g, err := Build(root)
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	require.Equal(t, 3, order)

	adj, err := g.AdjacencyMap()
	require.NoError(t, err)
	require.Contains(t, adj["p1"], "c1")
	require.Contains(t, adj["p1"], "p2")
}

func TestBuildToleratesCycles(t *testing.T) {
	a := map[string]any{"id": "a", "__typename": "Person"}
	b := map[string]any{"id": "b", "__typename": "Person"}
	a["friend"] = b
	b["friend"] = a

	g, err := Build(a)
	require.NoError(t, err)
	order, err := g.Order()
	require.NoError(t, err)
	require.Equal(t, 2, order)
}

func TestHasCycleDetectsSelfReference(t *testing.T) {
	a := map[string]any{"id": "a", "__typename": "Person"}
	b := map[string]any{"id": "b", "__typename": "Person"}
	a["friend"] = b
	b["friend"] = a

	require.True(t, HasCycle(a))
}

func TestHasCycleFalseForSharedButAcyclicReference(t *testing.T) {
	shared := map[string]any{"id": "c1", "__typename": "Company", "name": "Acme"}
	root := map[string]any{
		"id":         "p1",
		"__typename": "Person",
		"employer":   shared,
		"reports": []any{
			map[string]any{"id": "p2", "__typename": "Person", "employer": shared},
		},
	}

	require.False(t, HasCycle(root))
}

func TestWriteDOTProducesGraphvizText(t *testing.T) {
	root := map[string]any{"id": "solo", "__typename": "Person"}
	g, err := Build(root)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteDOT(g, &sb))
	require.Contains(t, sb.String(), "solo")
}
