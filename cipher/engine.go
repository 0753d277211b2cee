// Package cipher builds the SQL expressions that encrypt and decrypt column
// values inside the database, and resolves the expression engine for each
// configured connection.
//
// An Engine is bound to one (driver, cipher) pair. Registry looks the pair
// up for a named connection in a Table and caches the result:
//
//	reg := cipher.NewRegistry(cipher.Connections{
//		"main": {Driver: dialect.Postgres, Cipher: cipher.CipherPGP},
//	})
//	eng, err := reg.ServiceFor("main")
//	if err != nil {
//		return err
//	}
//	eng.EncryptExpression("123-45-6789", key, true)
//	// pgp_sym_encrypt('123-45-6789', 'k1')
package cipher

import (
	"log/slog"
	"strings"

	"github.com/syssam/cryptcol/dialect/sql"
)

// Key is an encryption key or passphrase. It is passed to the database as
// a literal and must never appear in logs, so every formatting path
// renders it redacted. Use string(k) to obtain the secret.
type Key string

const redacted = "[redacted]"

// String implements fmt.Stringer.
func (Key) String() string { return redacted }

// GoString implements fmt.GoStringer.
func (Key) GoString() string { return redacted }

// LogValue implements slog.LogValuer.
func (Key) LogValue() slog.Value { return slog.StringValue(redacted) }

// Engine synthesizes encrypt and decrypt SQL expressions.
//
// When quote is true, text is a literal value and is escaped with the
// driver's native rules. Otherwise text is written verbatim, which is how
// column references and raw fragments are passed. The key is always escaped.
type Engine interface {
	EncryptExpression(text string, key Key, quote bool) string
	DecryptExpression(text string, key Key, quote bool) string
}

// Cipher names of the built-in engines.
const (
	CipherPGP       = "pgp"
	CipherAES       = "aes"
	CipherSecretbox = "secretbox"
)

// operand returns text either escaped as a literal or verbatim.
func operand(dialect, text string, quote bool) string {
	if quote {
		return sql.QuoteLiteral(dialect, text)
	}
	return text
}

func call(fn string, args ...string) string {
	return fn + "(" + strings.Join(args, ", ") + ")"
}
