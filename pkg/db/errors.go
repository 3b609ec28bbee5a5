package db

import (
	"strings"

	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint violation. When
// constraintName is provided the violation must reference that constraint.
// SQLite surfaces no codes through GORM, so its message text is matched.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if pg, ok := pkgerrors.PostgresFields(err); ok {
		return pg.Code == pgUniqueViolation && matchesConstraint(pg.Constraint, constraintName)
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// IsCheckViolation reports whether err is a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if pg, ok := pkgerrors.PostgresFields(err); ok {
		return pg.Code == pgCheckViolation
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

func matchesConstraint(actual, want string) bool {
	return want == "" || actual == want
}
