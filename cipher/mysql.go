package cipher

import (
	"github.com/syssam/cryptcol/dialect"
	"github.com/syssam/cryptcol/dialect/sql"
)

// AES is the MySQL engine built on AES_ENCRYPT and AES_DECRYPT. Ciphertext
// is stored in a VARBINARY or BLOB column. MySQL returns NULL rather than an
// error when decrypting with a wrong key.
type AES struct{}

// EncryptExpression implements Engine.
//
//	AES_ENCRYPT('value', 'key')
func (AES) EncryptExpression(text string, key Key, quote bool) string {
	return call("AES_ENCRYPT",
		operand(dialect.MySQL, text, quote),
		sql.QuoteLiteral(dialect.MySQL, string(key)),
	)
}

// DecryptExpression implements Engine.
//
//	CAST(AES_DECRYPT(CAST(`ssn` AS BINARY), 'key') AS CHAR)
func (AES) DecryptExpression(text string, key Key, quote bool) string {
	return "CAST(" + call("AES_DECRYPT",
		"CAST("+operand(dialect.MySQL, text, quote)+" AS BINARY)",
		sql.QuoteLiteral(dialect.MySQL, string(key)),
	) + " AS CHAR)"
}
