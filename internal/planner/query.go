package planner

import (
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/optional"
	"github.com/mesh-intelligence/graphmirror/internal/querylang"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// QueryShallow builds the minimal selection to identify a reference: its
// __typename and id, or for a union, an inline fragment per clause.
func QueryShallow(info *schema.Info, typename schema.Typename) ([]querylang.Selection, error) {
	if t, ok := info.Schema[typename]; ok && t.Kind == schema.Union {
		sels := []querylang.Selection{querylang.Field("__typename", nil)}
		for _, clause := range info.Unions[typename].Clauses {
			sels = append(sels, querylang.InlineFragment(string(clause), querylang.Field("id", nil)))
		}
		return sels, nil
	}
	if _, ok := info.Objects[typename]; ok {
		return []querylang.Selection{
			querylang.Field("__typename", nil),
			querylang.Field("id", nil),
		}, nil
	}
	return nil, fmt.Errorf("planner: queryShallow: %q is not an OBJECT or UNION type", typename)
}

// QueryOwnData builds the own-data selection for one OBJECT type: id,
// primitives, links, and nested fields. Connection fields are omitted;
// they are fetched separately.
func QueryOwnData(info *schema.Info, typename schema.Typename) ([]querylang.Selection, error) {
	oi, ok := info.Objects[typename]
	if !ok {
		return nil, fmt.Errorf("planner: queryOwnData: %q is not an OBJECT type", typename)
	}

	sels := []querylang.Selection{querylang.Field("__typename", nil)}
	if oi.IDField != "" {
		sels = append(sels, querylang.Field(string(oi.IDField), nil))
	}
	for _, f := range oi.Primitives {
		sels = append(sels, querylang.Field(string(f), nil))
	}

	t := info.Schema[typename]
	for _, f := range oi.Links {
		ft := t.Fields[f]
		if ft.FieldFidelity == schema.Unfaithful {
			return nil, &schema.UnfaithfulFieldError{Typename: typename, Fieldname: f}
		}
		children, err := QueryShallow(info, ft.ElementType)
		if err != nil {
			return nil, err
		}
		sels = append(sels, querylang.Field(string(f), nil, children...))
	}

	for _, f := range oi.Nested {
		nestedField := t.Fields[f]
		var children []querylang.Selection
		for eggName, eggType := range nestedField.Eggs {
			switch eggType.Kind {
			case schema.PrimitiveField:
				children = append(children, querylang.Field(string(eggName), nil))
			case schema.NodeField:
				if eggType.FieldFidelity == schema.Unfaithful {
					return nil, &schema.UnfaithfulFieldError{Typename: typename, Fieldname: f + "." + eggName}
				}
				eggChildren, err := QueryShallow(info, eggType.ElementType)
				if err != nil {
					return nil, err
				}
				children = append(children, querylang.Field(string(eggName), nil, eggChildren...))
			}
		}
		sels = append(sels, querylang.Field(string(f), nil, children...))
	}

	return sels, nil
}

// QueryConnection builds the selection for one connection field. The after
// argument is omitted entirely when endCursor is the unknown marker, and
// included (possibly as after: null) when it is known.
func QueryConnection(info *schema.Info, typename schema.Typename, field schema.Fieldname, endCursor optional.Cursor, pageSize int) (querylang.Selection, error) {
	oi, ok := info.Objects[typename]
	if !ok {
		return querylang.Selection{}, fmt.Errorf("planner: queryConnection: %q is not an OBJECT type", typename)
	}
	found := false
	for _, f := range oi.Connections {
		if f == field {
			found = true
			break
		}
	}
	if !found {
		return querylang.Selection{}, &schema.NotConnectionFieldError{Typename: typename, Fieldname: field}
	}

	ft := info.Schema[typename].Fields[field]
	if ft.FieldFidelity == schema.Unfaithful {
		return querylang.Selection{}, &schema.UnfaithfulFieldError{Typename: typename, Fieldname: field}
	}

	args := []querylang.Arg{querylang.A("first", pageSize)}
	if known, isValid := endCursor.Get(); isValid {
		cursor, hasCursor := known.Get()
		if hasCursor {
			args = append(args, querylang.A("after", cursor))
		} else {
			args = append(args, querylang.A("after", nil))
		}
	}

	nodeShallow, err := QueryShallow(info, ft.ElementType)
	if err != nil {
		return querylang.Selection{}, err
	}

	return querylang.Field(string(field), args,
		querylang.Field("totalCount", nil),
		querylang.Field("pageInfo", nil,
			querylang.Field("endCursor", nil),
			querylang.Field("hasNextPage", nil),
		),
		querylang.Field("nodes", nil, nodeShallow...),
	), nil
}
