package schema

import "fmt"

// InvalidEggError reports a NESTED field whose egg is not PRIMITIVE or NODE.
type InvalidEggError struct {
	Field Fieldname
	Kind  FieldKind
}

func (e *InvalidEggError) Error() string {
	return fmt.Sprintf("nested egg %q must be PRIMITIVE or NODE, got field kind %d", e.Field, e.Kind)
}

// UnfaithfulFieldError is returned the moment schema compilation or query
// building encounters a NODE or CONNECTION field marked Unfaithful.
type UnfaithfulFieldError struct {
	Typename  Typename
	Fieldname Fieldname
}

func (e *UnfaithfulFieldError) Error() string {
	return fmt.Sprintf("unfaithful fields not yet implemented: %s.%s", e.Typename, e.Fieldname)
}

// UnknownTypeError reports a typename absent from the schema.
type UnknownTypeError struct {
	Typename Typename
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Typename)
}

// NotObjectTypeError reports a typename that exists but is not OBJECT where
// an OBJECT was required.
type NotObjectTypeError struct {
	Typename Typename
	Kind     Kind
}

func (e *NotObjectTypeError) Error() string {
	return fmt.Sprintf("type %q is %s, not OBJECT", e.Typename, e.Kind)
}

// NotConnectionFieldError reports a field referenced as a connection that
// the schema does not describe as one.
type NotConnectionFieldError struct {
	Typename  Typename
	Fieldname Fieldname
}

func (e *NotConnectionFieldError) Error() string {
	return fmt.Sprintf("%s.%s is not a CONNECTION field", e.Typename, e.Fieldname)
}

// UnsafeIdentifierError reports an identifier that would be spliced into SQL
// but does not match [A-Za-z0-9_]+.
type UnsafeIdentifierError struct {
	Identifier string
}

func (e *UnsafeIdentifierError) Error() string {
	return fmt.Sprintf("identifier %q is not SQL-safe", e.Identifier)
}
