// Package dialect provides the database dialect abstraction used by cryptcol.
//
// Encrypt and decrypt expressions are synthesized per storage driver, so
// every component that emits SQL is bound to one of the dialects below.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL (pgcrypto's pgp_sym_encrypt / pgp_sym_decrypt)
//   - MySQL: MySQL/MariaDB (AES_ENCRYPT / AES_DECRYPT)
//   - SQLite: modernc.org/sqlite with Go-registered cipher functions
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Usage
//
//	db, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// # Sub-packages
//
//   - dialect/sql: SQL builders, literal quoting and the driver implementation
//   - dialect/sql/sqlerr: classification of driver errors
package dialect
