// Package sql provides SQL query building primitives, literal quoting and the
// database/sql backed driver used by cryptcol.
//
// # Builder Types
//
//   - Builder: Low-level SQL string builder with identifier quoting
//   - Selector: SELECT query builder with predicates, ordering and limit
//   - InsertBuilder: INSERT statement builder with RETURNING support
//   - UpdateBuilder: UPDATE statement builder with SET and WHERE clauses
//
// # Dialect Support
//
// SQL generation adapts to the dialect: identifiers are quoted with double
// quotes (backticks on MySQL) and arguments use $n placeholders on
// PostgreSQL and ? elsewhere.
//
//	sql.Dialect(dialect.Postgres).
//	    Select("id", "name").
//	    From("users").
//	    Where(sql.EQ("status", "active"))
//	// SELECT "id", "name" FROM "users" WHERE "status" = $1
//
// # Raw Fragments
//
// Raw values are inlined where a value or column is expected. This is how
// encrypt expressions reach an INSERT without being bound as plaintext:
//
//	sql.Dialect(dialect.Postgres).
//	    Insert("people").
//	    Set("ssn", sql.Raw("pgp_sym_encrypt('123-45-6789', 'k1')"))
//
// # Literal Quoting
//
// QuoteLiteral escapes values with the driver's native rules (lib/pq's
// QuoteLiteral on PostgreSQL). Redact masks those literals again before a
// statement is logged by StatsDriver or DebugDriver.
package sql
