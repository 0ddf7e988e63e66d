package store

import (
	"database/sql"
	"errors"
	"strings"
)

// IsRecordNotFound reports whether err means no row matched.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports whether err comes from a unique constraint, for
// both sqlite and postgres drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

// RowsAffected returns the affected row count, treating a missing count as zero.
func RowsAffected(res sql.Result) int {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
