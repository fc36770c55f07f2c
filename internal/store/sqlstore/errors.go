package sqlstore

import (
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// uniqueViolation reports whether err is a unique-index violation on the
// given index. Postgres names the constraint; sqlite only reports the
// "table.column" list in the message, so the first column identifies it.
func uniqueViolation(err error, pgConstraint, sqliteColumn string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == pgConstraint
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		if sqErr.ExtendedCode != sqlite3.ErrConstraintUnique &&
			sqErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return false
		}
		return strings.Contains(sqErr.Error(), sqliteColumn)
	}
	return false
}
