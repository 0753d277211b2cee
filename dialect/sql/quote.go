package sql

import (
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/cryptcol/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// IsIdentifier reports whether s is a plain (optionally qualified) SQL identifier
// rather than an expression.
func IsIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// escapeStringValue escapes a string value for safe use in SQL.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func escapeStringValue(s string) string {
	// Fast path: if no escaping needed, return as-is
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	// Escape backslashes first, then single quotes
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// QuoteLiteral quotes s as a string literal using the native escaping rules
// of the given dialect. The result is safe to embed in a statement.
func QuoteLiteral(d, s string) string {
	switch d {
	case dialect.Postgres:
		return pq.QuoteLiteral(s)
	case dialect.MySQL:
		return "'" + escapeStringValue(s) + "'"
	default:
		// SQLite treats backslashes literally; only quotes are doubled.
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
}

// QuoteIdent quotes an identifier for the given dialect. Qualified names
// (schema.table or table.column) are quoted part by part.
func QuoteIdent(d, s string) string {
	q := `"`
	if d == dialect.MySQL {
		q = "`"
	}
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}
