// Package schema declares the Go-native representation of the remote
// GraphQL object graph that the Mirror caches locally.
//
// The schema descriptor itself is an external collaborator (produced by
// whatever introspects or hand-describes the remote API); this package only
// declares the shape the Mirror consumes and the derived SchemaInfo used
// throughout the rest of the module.
package schema

// Typename identifies a GraphQL named type (OBJECT, UNION, SCALAR, ENUM).
type Typename string

// Fieldname identifies a field on an OBJECT, or an egg on a NESTED field.
type Fieldname string

// Kind tags the variant of a Type.
type Kind int

const (
	// Scalar has no storage of its own.
	Scalar Kind = iota
	// Enum has no storage of its own.
	Enum
	// Object has Fields and is backed by a primitives_<T> table plus rows in
	// links/connections for its link- and connection-shaped fields.
	Object
	// Union has Clauses, a set of OBJECT typenames.
	Union
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "SCALAR"
	case Enum:
		return "ENUM"
	case Object:
		return "OBJECT"
	case Union:
		return "UNION"
	default:
		return "UNKNOWN"
	}
}

// Fidelity distinguishes node references the Mirror can faithfully
// reconstruct from ones it cannot.
type Fidelity int

const (
	// Faithful is the only fidelity the Mirror implements.
	Faithful Fidelity = iota
	// Unfaithful fields fail immediately at schema compile or query build
	// time with "unfaithful fields not yet implemented".
	Unfaithful
)

// FieldKind tags the variant of a FieldType.
type FieldKind int

const (
	// IDField is the identity field. Exactly one per OBJECT.
	IDField FieldKind = iota
	// PrimitiveField is a scalar or enum value.
	PrimitiveField
	// NodeField is a nullable reference to another object.
	NodeField
	// ConnectionField is an ordered, paginated list of nullable node
	// references.
	ConnectionField
	// NestedField is a nullable object-shaped group of eggs, each of which
	// is itself PrimitiveField or NodeField.
	NestedField
)

// FieldType describes one field of an OBJECT type.
type FieldType struct {
	Kind FieldKind

	// ElementType names the referenced OBJECT or UNION type. Meaningful for
	// NodeField and ConnectionField only.
	ElementType Typename

	// FieldFidelity applies to NodeField and ConnectionField only.
	FieldFidelity Fidelity

	// Eggs holds the egg fields of a NestedField. Every value must have
	// Kind PrimitiveField or NodeField; NewNestedField enforces this.
	Eggs map[Fieldname]FieldType
}

// NewIDField returns the identity field type.
func NewIDField() FieldType { return FieldType{Kind: IDField} }

// NewPrimitiveField returns a scalar/enum field type.
func NewPrimitiveField() FieldType { return FieldType{Kind: PrimitiveField} }

// NewNodeField returns a nullable reference field type.
func NewNodeField(elementType Typename, fidelity Fidelity) FieldType {
	return FieldType{Kind: NodeField, ElementType: elementType, FieldFidelity: fidelity}
}

// NewConnectionField returns a paginated-list field type.
func NewConnectionField(elementType Typename, fidelity Fidelity) FieldType {
	return FieldType{Kind: ConnectionField, ElementType: elementType, FieldFidelity: fidelity}
}

// NewNestedField returns a nested-group field type. It returns an error if
// any egg is not PrimitiveField or NodeField.
func NewNestedField(eggs map[Fieldname]FieldType) (FieldType, error) {
	for name, egg := range eggs {
		if egg.Kind != PrimitiveField && egg.Kind != NodeField {
			return FieldType{}, &InvalidEggError{Field: name, Kind: egg.Kind}
		}
	}
	return FieldType{Kind: NestedField, Eggs: eggs}, nil
}

// Type describes one named type in the schema.
type Type struct {
	Kind Kind

	// Fields is populated for Object.
	Fields map[Fieldname]FieldType

	// Clauses is populated for Union: the set of OBJECT typenames that may
	// satisfy the union, in a fixed (caller-supplied) order.
	Clauses []Typename
}

// NewObjectType returns an OBJECT type with the given fields.
func NewObjectType(fields map[Fieldname]FieldType) Type {
	return Type{Kind: Object, Fields: fields}
}

// NewUnionType returns a UNION type with the given clauses.
func NewUnionType(clauses []Typename) Type {
	return Type{Kind: Union, Clauses: clauses}
}

// NewScalarType returns a SCALAR type.
func NewScalarType() Type { return Type{Kind: Scalar} }

// NewEnumType returns an ENUM type.
func NewEnumType() Type { return Type{Kind: Enum} }

// Schema maps every named type in the remote API to its description.
type Schema map[Typename]Type
