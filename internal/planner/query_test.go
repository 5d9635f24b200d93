package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/graphmirror/internal/optional"
	"github.com/mesh-intelligence/graphmirror/internal/querylang"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

func testInfo(t *testing.T) *schema.Info {
	t.Helper()
	nested, err := schema.NewNestedField(map[schema.Fieldname]schema.FieldType{
		"country": schema.NewPrimitiveField(),
	})
	require.NoError(t, err)

	sch := schema.Schema{
		"Person": schema.NewObjectType(map[schema.Fieldname]schema.FieldType{
			"id":       schema.NewIDField(),
			"name":     schema.NewPrimitiveField(),
			"employer": schema.NewNodeField("Company", schema.Faithful),
			"reports":  schema.NewConnectionField("Person", schema.Faithful),
			"address":  nested,
		}),
		"Company": schema.NewObjectType(map[schema.Fieldname]schema.FieldType{
			"id": schema.NewIDField(),
		}),
	}
	info, err := schema.Compile(sch)
	require.NoError(t, err)
	return info
}

func printSelections(t *testing.T, sels ...querylang.Selection) string {
	t.Helper()
	return querylang.Query("Q", nil, sels...).Print()
}

func TestQueryShallowObject(t *testing.T) {
	info := testInfo(t)
	sels, err := QueryShallow(info, "Company")
	require.NoError(t, err)
	out := printSelections(t, sels...)
	require.Contains(t, out, "__typename")
	require.Contains(t, out, "id")
}

func TestQueryOwnDataIncludesLinksAndNested(t *testing.T) {
	info := testInfo(t)
	sels, err := QueryOwnData(info, "Person")
	require.NoError(t, err)
	out := printSelections(t, sels...)
	require.Contains(t, out, "name")
	require.Contains(t, out, "employer")
	require.Contains(t, out, "address")
	require.Contains(t, out, "country")
}

func TestQueryConnectionOmitsAfterWhenCursorUnknown(t *testing.T) {
	info := testInfo(t)
	sel, err := QueryConnection(info, "Person", "reports", optional.UnknownCursor(), 20)
	require.NoError(t, err)
	out := printSelections(t, sel)
	require.Contains(t, out, "reports(first: 20)")
	require.NotContains(t, out, "after")
}

func TestQueryConnectionIncludesAfterWhenCursorKnown(t *testing.T) {
	info := testInfo(t)
	sel, err := QueryConnection(info, "Person", "reports", optional.KnownCursor("cur-1"), 20)
	require.NoError(t, err)
	out := printSelections(t, sel)
	require.Contains(t, out, `after: "cur-1"`)
}

func TestQueryConnectionIncludesAfterNullWhenKnownNull(t *testing.T) {
	info := testInfo(t)
	sel, err := QueryConnection(info, "Person", "reports", optional.KnownNullCursor(), 20)
	require.NoError(t, err)
	out := printSelections(t, sel)
	require.Contains(t, out, "after: null")
}

func TestQueryConnectionRejectsNonConnectionField(t *testing.T) {
	info := testInfo(t)
	_, err := QueryConnection(info, "Person", "name", optional.UnknownCursor(), 20)
	require.Error(t, err)
	var target *schema.NotConnectionFieldError
	require.ErrorAs(t, err, &target)
}
