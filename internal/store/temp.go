package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// NextTempTableName scans sqlite_master for the maximum existing suffix of
// tables named "<prefix>_<n>" and returns "<prefix>_<n+1>". Scanning rather
// than keeping an in-memory counter stays correct even if a previous
// attempt aborted before dropping its temp table.
func NextTempTableName(tx *sql.Tx, prefix string) (string, error) {
	if err := MustSQLSafe(prefix); err != nil {
		return "", err
	}

	rows, err := tx.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ? ESCAPE '\'
		 UNION SELECT name FROM sqlite_temp_master WHERE type = 'table' AND name LIKE ? ESCAPE '\'`,
		prefix+"\\_%", prefix+"\\_%",
	)
	if err != nil {
		return "", fmt.Errorf("scanning for existing %s tables: %w", prefix, err)
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("scanning table name: %w", err)
		}
		suffix := strings.TrimPrefix(name, prefix+"_")
		if suffix == name {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterating table names: %w", err)
	}

	return fmt.Sprintf("%s_%d", prefix, max+1), nil
}
