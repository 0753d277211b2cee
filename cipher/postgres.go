package cipher

import (
	"github.com/syssam/cryptcol/dialect"
	"github.com/syssam/cryptcol/dialect/sql"
)

// PGP is the pgcrypto engine for PostgreSQL. The database must have the
// pgcrypto extension installed; ciphertext is stored in a bytea column.
type PGP struct{}

// EncryptExpression implements Engine.
//
//	pgp_sym_encrypt('value', 'key')
func (PGP) EncryptExpression(text string, key Key, quote bool) string {
	return call("pgp_sym_encrypt",
		operand(dialect.Postgres, text, quote),
		sql.QuoteLiteral(dialect.Postgres, string(key)),
	)
}

// DecryptExpression implements Engine.
//
//	pgp_sym_decrypt("ssn"::bytea, 'key')
func (PGP) DecryptExpression(text string, key Key, quote bool) string {
	return call("pgp_sym_decrypt",
		operand(dialect.Postgres, text, quote)+"::bytea",
		sql.QuoteLiteral(dialect.Postgres, string(key)),
	)
}
