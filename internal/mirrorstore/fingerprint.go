package mirrorstore

import (
	"slices"

	"github.com/mesh-intelligence/graphmirror/internal/jsonval"
	"github.com/mesh-intelligence/graphmirror/pkg/schema"
)

// Options are the identity-relevant construction options of a Mirror: the
// portion of the config that participates in the on-disk fingerprint.
// BlacklistedIds is included because changing which ids are silently
// nulled changes what the store means, even though it changes no DDL.
type Options struct {
	BlacklistedIds []string
}

// wireFingerprint/schemaToWire give the fingerprint a stable, purely-data shape
// independent of the in-memory Type/FieldType representation, so adding an
// unrelated field to those Go structs later cannot silently change the
// fingerprint of every existing database.
type wireFingerprint struct {
	Version string         `json:"version"`
	Schema  map[string]any `json:"schema"`
	Options map[string]any `json:"options"`
}

// Fingerprint canonically encodes {version, schema, options} into the
// meta.config blob. Encoding is delegated to jsonval so the fingerprint and
// primitive-column encodings share one canonicalization rule (sorted keys,
// stable formatting).
func Fingerprint(s schema.Schema, opts Options) (string, error) {
	// BlacklistedIds is a set, not a sequence (blacklistSet in pkg/mirror
	// treats it that way), so the fingerprint must not depend on the order
	// the caller happened to list ids in: sort a copy before encoding, or
	// two opens with the same blacklist in different slice order fingerprint
	// differently and spuriously fail the reopen-compatibility check.
	blacklisted := slices.Clone(opts.BlacklistedIds)
	slices.Sort(blacklisted)

	wire := wireFingerprint{
		Version: Version,
		Schema:  schemaToWire(s),
		Options: map[string]any{
			"blacklistedIds": blacklisted,
		},
	}
	return jsonval.Encode(map[string]any{
		"version": wire.Version,
		"schema":  wire.Schema,
		"options": wire.Options,
	})
}

func schemaToWire(s schema.Schema) map[string]any {
	out := make(map[string]any, len(s))
	for typename, t := range s {
		out[string(typename)] = typeToWire(t)
	}
	return out
}

func typeToWire(t schema.Type) map[string]any {
	switch t.Kind {
	case schema.Scalar:
		return map[string]any{"kind": "SCALAR"}
	case schema.Enum:
		return map[string]any{"kind": "ENUM"}
	case schema.Union:
		clauses := make([]any, len(t.Clauses))
		for i, c := range t.Clauses {
			clauses[i] = string(c)
		}
		return map[string]any{"kind": "UNION", "clauses": clauses}
	case schema.Object:
		fields := make(map[string]any, len(t.Fields))
		for name, ft := range t.Fields {
			fields[string(name)] = fieldTypeToWire(ft)
		}
		return map[string]any{"kind": "OBJECT", "fields": fields}
	default:
		return map[string]any{"kind": "UNKNOWN"}
	}
}

func fieldTypeToWire(ft schema.FieldType) map[string]any {
	switch ft.Kind {
	case schema.IDField:
		return map[string]any{"kind": "ID"}
	case schema.PrimitiveField:
		return map[string]any{"kind": "PRIMITIVE"}
	case schema.NodeField:
		return map[string]any{
			"kind":        "NODE",
			"elementType": string(ft.ElementType),
			"unfaithful":  ft.FieldFidelity == schema.Unfaithful,
		}
	case schema.ConnectionField:
		return map[string]any{
			"kind":        "CONNECTION",
			"elementType": string(ft.ElementType),
			"unfaithful":  ft.FieldFidelity == schema.Unfaithful,
		}
	case schema.NestedField:
		eggs := make(map[string]any, len(ft.Eggs))
		for name, egg := range ft.Eggs {
			eggs[string(name)] = fieldTypeToWire(egg)
		}
		return map[string]any{"kind": "NESTED", "eggs": eggs}
	default:
		return map[string]any{"kind": "UNKNOWN"}
	}
}
