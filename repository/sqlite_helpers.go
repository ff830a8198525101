package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/akinalp/scribe/pkg"
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// requireAffected turns "no row matched" into ErrNotFound for UPDATE/DELETE by id.
func requireAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s not found", pkg.ErrNotFound, entity)
	}
	return nil
}

// splitIDs parses a group_concat list of ids. Ids never contain commas.
func splitIDs(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}

// scanStrings collects a single-column result set.
func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}
