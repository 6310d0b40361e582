package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/chepyr/taskflow/internal/shared"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var ErrUniqueViolation = errors.New("unique constraint violation")

// UniqueViolationError names the column whose unique constraint was hit.
type UniqueViolationError struct {
	Column string
	Err    error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("duplicate value for %s: %v", e.Column, e.Err)
}

func (e *UniqueViolationError) Is(target error) bool { return target == ErrUniqueViolation }

func (e *UniqueViolationError) Unwrap() error { return e.Err }

// mapError converts driver errors into the service's taxonomy.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return shared.ErrNotFound
	}
	if col, ok := uniqueColumn(err); ok {
		return &UniqueViolationError{Column: col, Err: err}
	}
	return shared.Persistence(op, err)
}

func uniqueColumn(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		// Detail looks like: Key (username)=(alice) already exists.
		if start := strings.Index(pqErr.Detail, "("); start >= 0 {
			if end := strings.Index(pqErr.Detail[start:], ")"); end > 0 {
				return pqErr.Detail[start+1 : start+end], true
			}
		}
		return pqErr.Constraint, true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		// Message looks like: UNIQUE constraint failed: users.username
		msg := liteErr.Error()
		if i := strings.LastIndex(msg, "."); i >= 0 {
			return strings.TrimSpace(msg[i+1:]), true
		}
		return "", true
	}
	return "", false
}
