// Package apperr defines the error taxonomy shared by the domain services:
// not-found, field-level validation failures, authentication failures, and
// unique-constraint violations surfaced by PostgreSQL.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound reports a missing target or parent record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned for any authentication failure.
	// It is deliberately generic: callers must not learn whether the
	// username exists or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Validation carries field-level validation errors that are returned to the
// caller for re-display, keyed by field name.
type Validation struct {
	Fields map[string]string
}

func (v *Validation) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidation builds a Validation error for a single field.
func NewValidation(field, msg string) *Validation {
	return &Validation{Fields: map[string]string{field: msg}}
}

// AsValidation unwraps err into a Validation if it is one.
func AsValidation(err error) (*Validation, bool) {
	var v *Validation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// pgUniqueViolation is the PostgreSQL error code for unique-constraint violations.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-constraint violation.
// If constraint is non-empty, the violated constraint name must also match.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// NotFoundIfNoRows maps pgx.ErrNoRows to ErrNotFound and passes every other
// error through unchanged.
func NotFoundIfNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// IsNotFound reports whether err represents a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
