package planner

import (
	"fmt"

	"github.com/mesh-intelligence/graphmirror/internal/querylang"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// Limits are the four numeric caps a query build takes as input.
type Limits struct {
	NodesLimit         int
	NodesOfTypeLimit   int
	ConnectionLimit    int
	ConnectionPageSize int
}

// ownDataAliasPrefix and connectionAliasPrefix are chosen so neither is a
// prefix of the other: the ingester routes each top-level response key by
// whichever prefix it starts with.
const (
	ownDataAliasPrefix   = "owndata_"
	connectionAliasPrefix = "node_"
)

// BuildQuery transforms a Plan into the batched top-level selections of
// one update query document.
func BuildQuery(info *schema.Info, plan *Plan, limits Limits) (querylang.Document, error) {
	var top []querylang.Selection

	ownData, err := buildOwnDataSelections(info, plan.Objects, limits)
	if err != nil {
		return querylang.Document{}, err
	}
	top = append(top, ownData...)

	conns, err := buildConnectionSelections(info, plan.Connections, limits)
	if err != nil {
		return querylang.Document{}, err
	}
	top = append(top, conns...)

	return querylang.Query("MirrorUpdate", nil, top...), nil
}

func buildOwnDataSelections(info *schema.Info, objects []ObjectRef, limits Limits) ([]querylang.Selection, error) {
	limited := objects
	if limits.NodesLimit > 0 && len(limited) > limits.NodesLimit {
		limited = limited[:limits.NodesLimit]
	}

	byTypename := make(map[schema.Typename][]string)
	var order []schema.Typename
	for _, ref := range limited {
		if _, seen := byTypename[ref.Typename]; !seen {
			order = append(order, ref.Typename)
		}
		byTypename[ref.Typename] = append(byTypename[ref.Typename], ref.ID)
	}

	var sels []querylang.Selection
	alias := 0
	for _, typename := range order {
		ids := byTypename[typename]
		chunkSize := limits.NodesOfTypeLimit
		if chunkSize <= 0 {
			chunkSize = len(ids)
		}
		ownData, err := QueryOwnData(info, typename)
		if err != nil {
			return nil, err
		}

		for start := 0; start < len(ids); start += chunkSize {
			end := min(start+chunkSize, len(ids))
			chunk := ids[start:end]

			idValues := make([]querylang.Value, len(chunk))
			for i, id := range chunk {
				idValues[i] = querylang.Lit(id)
			}

			field := querylang.Field("nodes",
				[]querylang.Arg{querylang.A("ids", querylang.List(idValues...))},
				querylang.InlineFragment(string(typename), ownData...),
			)
			sels = append(sels, querylang.Alias(fmt.Sprintf("%s%d", ownDataAliasPrefix, alias), field))
			alias++
		}
	}
	return sels, nil
}

func buildConnectionSelections(info *schema.Info, connections []ConnectionRef, limits Limits) ([]querylang.Selection, error) {
	limited := connections
	if limits.ConnectionLimit > 0 && len(limited) > limits.ConnectionLimit {
		limited = limited[:limits.ConnectionLimit]
	}

	type bucket struct {
		typename schema.Typename
		id       string
		refs     []ConnectionRef
	}
	var order []string
	byObject := make(map[string]*bucket)
	for _, ref := range limited {
		b, ok := byObject[ref.ObjectID]
		if !ok {
			b = &bucket{typename: ref.ObjectTypename, id: ref.ObjectID}
			byObject[ref.ObjectID] = b
			order = append(order, ref.ObjectID)
		} else if b.typename != ref.ObjectTypename {
			return nil, fmt.Errorf("planner: connection plan inconsistent: object %q has typenames %q and %q", ref.ObjectID, b.typename, ref.ObjectTypename)
		}
		b.refs = append(b.refs, ref)
	}

	var sels []querylang.Selection
	alias := 0
	for _, id := range order {
		b := byObject[id]
		var connSels []querylang.Selection
		for _, ref := range b.refs {
			connSel, err := QueryConnection(info, b.typename, ref.Fieldname, ref.EndCursor, limits.ConnectionPageSize)
			if err != nil {
				return nil, err
			}
			connSels = append(connSels, connSel)
		}

		field := querylang.Field("node",
			[]querylang.Arg{querylang.A("id", b.id)},
			append([]querylang.Selection{querylang.Field("id", nil)},
				querylang.InlineFragment(string(b.typename), connSels...))...,
		)
		sels = append(sels, querylang.Alias(fmt.Sprintf("%s%d", connectionAliasPrefix, alias), field))
		alias++
	}
	return sels, nil
}
