package shared

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Known postgres error codes the mutation boundary translates for users.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// TranslateConstraint maps known constraint violations to a human-readable
// message. It returns an empty string when the error is not a recognised
// constraint failure; callers then fall back to a generic notification.
func TranslateConstraint(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch {
		case strings.Contains(pgErr.ConstraintName, "barcode"):
			return "a product with this barcode already exists"
		case strings.Contains(pgErr.ConstraintName, "sku"):
			return "a product with this SKU already exists"
		default:
			return "a record with these details already exists"
		}
	case pgForeignKeyViolation:
		return "the referenced record no longer exists"
	case pgCheckViolation:
		return "the submitted values are outside the allowed range"
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
