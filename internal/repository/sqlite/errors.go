package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/domain"
)

// isUniqueConstraintError checks for a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError checks for a SQLite foreign key violation.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// storageErr marks a driver-level failure so errors.Is(err, domain.ErrStorage)
// holds while the original error stays on the chain.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

// Timestamps are stored as Unix milliseconds; updated_at is the sole
// ordering key for "most recent" views.

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
