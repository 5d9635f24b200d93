// Package optional provides a small generic Optional type used to carry the
// three-valued "unknown / known-null / known-string" distinction the
// planner needs for connection end cursors.
package optional

// Optional carries a value that may be absent.
type Optional[T any] struct {
	Valid bool
	Value T
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Valid: true, Value: v} }

// None returns an absent Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it was present.
func (o Optional[T]) Get() (T, bool) { return o.Value, o.Valid }

// Cursor is the three-valued end-cursor state:
//   - Cursor{}                         -- unknown (never fetched)
//   - Some(None[string]())             -- known-null (empty connection, or at start)
//   - Some(Some(s))                    -- known-string
type Cursor Optional[Optional[string]]

// UnknownCursor is the "never fetched" cursor state.
func UnknownCursor() Cursor { return Cursor(None[Optional[string]]()) }

// KnownNullCursor is the "known, but no cursor" state (empty connection).
func KnownNullCursor() Cursor { return Cursor(Some(None[string]())) }

// KnownCursor is the "known, positioned" state.
func KnownCursor(s string) Cursor { return Cursor(Some(Some(s))) }

// IsUnknown reports whether the cursor has never been fetched.
func (c Cursor) IsUnknown() bool { return !c.Valid }

// Get returns the value and whether it was present.
func (c Cursor) Get() (Optional[string], bool) { return c.Value, c.Valid }
