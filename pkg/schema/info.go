package schema

// NestedEggs partitions the eggs of one NESTED field by kind.
type NestedEggs struct {
	Primitives []Fieldname
	Nodes      []Fieldname
}

// ObjectInfo partitions one OBJECT type's fields by kind, plus the
// per-nested-field egg decomposition.
type ObjectInfo struct {
	Typename    Typename
	IDField     Fieldname
	Primitives  []Fieldname
	Links       []Fieldname
	Connections []Fieldname
	Nested      []Fieldname
	Eggs        map[Fieldname]NestedEggs
}

// UnionInfo lists one UNION type's clauses.
type UnionInfo struct {
	Typename Typename
	Clauses  []Typename
}

// Info is derived once at construction, partitioning every OBJECT and
// UNION type's fields for reuse by every other component (store
// initializer, registrar, planner, ingester, extractor).
type Info struct {
	Schema  Schema
	Objects map[Typename]*ObjectInfo
	Unions  map[Typename]*UnionInfo
}

// Compile walks the schema once, partitioning every OBJECT's fields into
// primitive/link/connection/nested sets and every UNION's clauses. It fails
// immediately on the first Unfaithful NODE or CONNECTION field.
func Compile(s Schema) (*Info, error) {
	info := &Info{
		Schema:  s,
		Objects: make(map[Typename]*ObjectInfo),
		Unions:  make(map[Typename]*UnionInfo),
	}

	for typename, t := range s {
		switch t.Kind {
		case Object:
			oi, err := compileObject(typename, t)
			if err != nil {
				return nil, err
			}
			info.Objects[typename] = oi
		case Union:
			info.Unions[typename] = &UnionInfo{Typename: typename, Clauses: t.Clauses}
		case Scalar, Enum:
			// No storage, no partition.
		}
	}
	return info, nil
}

func compileObject(typename Typename, t Type) (*ObjectInfo, error) {
	oi := &ObjectInfo{
		Typename: typename,
		Eggs:     make(map[Fieldname]NestedEggs),
	}

	for fieldname, ft := range t.Fields {
		switch ft.Kind {
		case IDField:
			oi.IDField = fieldname
		case PrimitiveField:
			oi.Primitives = append(oi.Primitives, fieldname)
		case NodeField:
			if ft.FieldFidelity == Unfaithful {
				return nil, &UnfaithfulFieldError{Typename: typename, Fieldname: fieldname}
			}
			oi.Links = append(oi.Links, fieldname)
		case ConnectionField:
			if ft.FieldFidelity == Unfaithful {
				return nil, &UnfaithfulFieldError{Typename: typename, Fieldname: fieldname}
			}
			oi.Connections = append(oi.Connections, fieldname)
		case NestedField:
			oi.Nested = append(oi.Nested, fieldname)
			eggs := NestedEggs{}
			for eggName, eggType := range ft.Eggs {
				switch eggType.Kind {
				case PrimitiveField:
					eggs.Primitives = append(eggs.Primitives, eggName)
				case NodeField:
					if eggType.FieldFidelity == Unfaithful {
						return nil, &UnfaithfulFieldError{Typename: typename, Fieldname: fieldname + "." + eggName}
					}
					eggs.Nodes = append(eggs.Nodes, eggName)
				}
			}
			oi.Eggs[fieldname] = eggs
		}
	}
	return oi, nil
}

// LinkFieldnames returns every link-shaped field of an OBJECT: its top-level
// NODE fields, plus one synthetic "F.E" entry per nested NODE egg.
func (oi *ObjectInfo) LinkFieldnames() []string {
	names := make([]string, 0, len(oi.Links))
	for _, f := range oi.Links {
		names = append(names, string(f))
	}
	for _, nested := range oi.Nested {
		eggs := oi.Eggs[nested]
		for _, egg := range eggs.Nodes {
			names = append(names, string(nested)+"."+string(egg))
		}
	}
	return names
}
