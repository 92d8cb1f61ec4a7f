package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// invalidTextRepresentation is raised when an argument cannot be cast to the
// column type, e.g. a malformed uuid.
const invalidTextRepresentation pq.ErrorCode = "22P02"

// isMissing reports whether err means the addressed row cannot exist. An id
// that is not a valid uuid matches no row, so it is treated like a miss.
func isMissing(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}
