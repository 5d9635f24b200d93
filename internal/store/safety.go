package store

import (
	"database/sql"
	"fmt"
	"regexp"
)

// sqlSafe is the pattern any user-derived identifier spliced into SQL text
// (typenames, fieldnames, synthesized column/table names) must match.
var sqlSafe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// IsSQLSafe reports whether s is safe to interpolate into an identifier
// position in SQL text.
func IsSQLSafe(s string) bool {
	return sqlSafe.MatchString(s)
}

// MustSQLSafe returns an error naming s if it is not SQL-safe.
func MustSQLSafe(s string) error {
	if !IsSQLSafe(s) {
		return &UnsafeIdentifierError{Identifier: s}
	}
	return nil
}

// UnsafeIdentifierError reports an identifier that failed IsSQLSafe.
type UnsafeIdentifierError struct {
	Identifier string
}

func (e *UnsafeIdentifierError) Error() string {
	return fmt.Sprintf("identifier %q is not SQL-safe (must match [A-Za-z0-9_]+)", e.Identifier)
}

// SingleRowUpdateError reports that a write expected to affect exactly one
// row affected a different number. It carries enough detail (source SQL,
// args, actual count) to diagnose registrar/state drift immediately.
type SingleRowUpdateError struct {
	Query   string
	Args    []any
	Rows    int64
	RowsErr error
}

func (e *SingleRowUpdateError) Error() string {
	if e.RowsErr != nil {
		return fmt.Sprintf("single-row update assertion: could not read affected rows for %q (args %v): %v",
			e.Query, e.Args, e.RowsErr)
	}
	return fmt.Sprintf("single-row update assertion failed: expected 1 row, got %d, for %q (args %v)",
		e.Rows, e.Query, e.Args)
}

// SingleRowUpdate executes query against tx and asserts that exactly one
// row was changed.
func SingleRowUpdate(tx *sql.Tx, query string, args ...any) error {
	res, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("executing single-row update %q: %w", query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &SingleRowUpdateError{Query: query, Args: args, RowsErr: err}
	}
	if n != 1 {
		return &SingleRowUpdateError{Query: query, Args: args, Rows: n}
	}
	return nil
}
