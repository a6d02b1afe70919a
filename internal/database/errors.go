package database

import (
	"errors"

	"github.com/lib/pq"
)

// IsRetryable reports whether err is a transient Postgres failure that a
// fresh transaction could succeed on: serialization conflicts, deadlocks
// and lock timeouts. Constraint violations and anything else are
// permanent.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
