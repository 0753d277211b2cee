// Package sqlerr classifies errors returned by the supported SQL drivers.
//
// Driver errors pass through cryptcol unwrapped, so callers that need to
// distinguish a constraint violation or a failed decryption from other
// failures use the helpers below.
package sqlerr

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// sqlStateError is an interface for errors that provide SQLSTATE codes.
// Implemented by: pq.Error, pgconn.PgError.
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgExternalRoutine     = "39000" // raised by pgcrypto on a wrong key
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	return matches(err, []string{pgUniqueViolation}, []uint16{mysqlDuplicateEntry},
		"Error 1062",                 // MySQL (string fallback)
		"violates unique constraint", // Postgres (string fallback)
		"UNIQUE constraint failed",   // SQLite
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	return matches(err, []string{pgForeignKeyViolation}, []uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		"Error 1451",
		"Error 1452",
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	)
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool {
	return matches(err, []string{pgCheckViolation}, []uint16{mysqlCheckConstraintViolate},
		"Error 3819",
		"violates check constraint",
		"CHECK constraint failed",
	)
}

// IsDecryptError reports if the error resulted from a decrypt expression
// evaluated with a wrong key or over corrupt ciphertext. MySQL never
// reports this case; AES_DECRYPT yields NULL instead.
func IsDecryptError(err error) bool {
	if err == nil {
		return false
	}
	if containsAny(err.Error(),
		"Wrong key or corrupt data", // pgcrypto
		"Corrupt data",              // pgcrypto, truncated ciphertext
		"cryptcol_decrypt:",         // SQLite function
	) {
		return true
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgExternalRoutine {
		return true
	}
	if e := (*pq.Error)(nil); errors.As(err, &e) && string(e.Code) == pgExternalRoutine {
		return true
	}
	return false
}

func matches(err error, pgCodes []string, mysqlNumbers []uint16, fallback ...string) bool {
	if err == nil {
		return false
	}
	// Check for SQLSTATE code (PostgreSQL)
	if e, ok := asError[sqlStateError](err); ok && containsString(pgCodes, e.SQLState()) {
		return true
	}
	// Check for PostgreSQL pq.Error code
	if e := (*pq.Error)(nil); errors.As(err, &e) && containsString(pgCodes, string(e.Code)) {
		return true
	}
	// Check for MySQL error number
	if e := (*mysql.MySQLError)(nil); errors.As(err, &e) {
		for _, n := range mysqlNumbers {
			if e.Number == n {
				return true
			}
		}
	}
	// Fallback to string matching for drivers that don't implement interfaces
	return containsAny(err.Error(), fallback...)
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
