package schema

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// LoadFile decodes a JSON schema descriptor from disk into a Schema value.
// This is a CLI convenience, not part of the core's consumed-interface
// contract: New still accepts a Schema built directly in Go.
//
// Wire shape (one entry per typename):
//
//	{"Issue": {"kind": "OBJECT", "fields": {
//	    "id": {"kind": "ID"},
//	    "title": {"kind": "PRIMITIVE"},
//	    "author": {"kind": "NODE", "elementType": "User"}
//	}}}
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", path, err)
	}

	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing schema file %s: %w", path, err)
	}

	root, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema file %s: expected a JSON object at the top level", path)
	}

	out := make(Schema, len(root))
	for typename, v := range root {
		t, err := decodeType(v)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", typename, err)
		}
		out[Typename(typename)] = t
	}
	return out, nil
}

// kindOf reads the "kind" string out of a decoded JSON object node using an
// ojg/jp path expression rather than a manual type assertion chain — the
// object's shape varies by field kind, which is exactly the dynamic-data
// case jp is meant for.
func kindOf(node any) string {
	res := jp.C("kind").First(node)
	s, _ := res.(string)
	return s
}

func decodeType(v any) (Type, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Type{}, fmt.Errorf("expected a JSON object")
	}
	switch kindOf(obj) {
	case "SCALAR":
		return NewScalarType(), nil
	case "ENUM":
		return NewEnumType(), nil
	case "UNION":
		raw, _ := jp.C("clauses").First(obj).([]any)
		clauses := make([]Typename, 0, len(raw))
		for _, c := range raw {
			s, _ := c.(string)
			clauses = append(clauses, Typename(s))
		}
		return NewUnionType(clauses), nil
	case "OBJECT":
		raw, _ := jp.C("fields").First(obj).(map[string]any)
		fields := make(map[Fieldname]FieldType, len(raw))
		for name, fv := range raw {
			ft, err := decodeFieldType(fv)
			if err != nil {
				return Type{}, fmt.Errorf("field %q: %w", name, err)
			}
			fields[Fieldname(name)] = ft
		}
		return NewObjectType(fields), nil
	default:
		return Type{}, fmt.Errorf("unknown type kind %q", kindOf(obj))
	}
}

func decodeFieldType(v any) (FieldType, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return FieldType{}, fmt.Errorf("expected a JSON object")
	}

	fidelity := Faithful
	if unfaithful, _ := jp.C("unfaithful").First(obj).(bool); unfaithful {
		fidelity = Unfaithful
	}
	elementType, _ := jp.C("elementType").First(obj).(string)

	switch kindOf(obj) {
	case "ID":
		return NewIDField(), nil
	case "PRIMITIVE":
		return NewPrimitiveField(), nil
	case "NODE":
		return NewNodeField(Typename(elementType), fidelity), nil
	case "CONNECTION":
		return NewConnectionField(Typename(elementType), fidelity), nil
	case "NESTED":
		raw, _ := jp.C("eggs").First(obj).(map[string]any)
		eggs := make(map[Fieldname]FieldType, len(raw))
		for name, ev := range raw {
			eft, err := decodeFieldType(ev)
			if err != nil {
				return FieldType{}, fmt.Errorf("egg %q: %w", name, err)
			}
			eggs[Fieldname(name)] = eft
		}
		return NewNestedField(eggs)
	default:
		return FieldType{}, fmt.Errorf("unknown field kind %q", kindOf(obj))
	}
}
