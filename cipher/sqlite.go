package cipher

import (
	"github.com/syssam/cryptcol/dialect"
	"github.com/syssam/cryptcol/dialect/sql"
)

// SQL function names registered by RegisterSQLiteFunctions.
const (
	SQLiteEncryptFunc = "cryptcol_encrypt"
	SQLiteDecryptFunc = "cryptcol_decrypt"
)

// Secretbox is the SQLite engine. SQLite has no built-in encryption, so the
// expressions call scalar functions implemented in Go that seal values with
// NaCl secretbox. The functions are registered with modernc.org/sqlite when
// this package is initialized.
type Secretbox struct{}

// EncryptExpression implements Engine.
//
//	cryptcol_encrypt('value', 'key')
func (Secretbox) EncryptExpression(text string, key Key, quote bool) string {
	return call(SQLiteEncryptFunc,
		operand(dialect.SQLite, text, quote),
		sql.QuoteLiteral(dialect.SQLite, string(key)),
	)
}

// DecryptExpression implements Engine.
//
//	cryptcol_decrypt(CAST("ssn" AS BLOB), 'key')
func (Secretbox) DecryptExpression(text string, key Key, quote bool) string {
	return call(SQLiteDecryptFunc,
		"CAST("+operand(dialect.SQLite, text, quote)+" AS BLOB)",
		sql.QuoteLiteral(dialect.SQLite, string(key)),
	)
}
