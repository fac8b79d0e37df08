// Package repository implements the domain repository ports using SQLite.
package repository

import (
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"fundcrm/internal/domain"
)

// sqliteTimeFormat matches the datetime('now') default used in migrations.
const sqliteTimeFormat = "2006-01-02 15:04:05"

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &domain.ConflictError{Message: "resource already exists"}
	}
	return err
}

// buildUpdate renders "SET col1 = ?, col2 = ?, updated_at = ..." with a
// deterministic column order and returns the arg slice. Callers are
// responsible for only passing whitelisted column names.
func buildUpdate(fields map[string]any, touchUpdatedAt bool) (string, []any) {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, col+" = ?")
		args = append(args, fields[col])
	}
	if touchUpdatedAt {
		parts = append(parts, "updated_at = datetime('now')")
	}
	return strings.Join(parts, ", "), args
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(sqliteTimeFormat, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func strArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intArg(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
