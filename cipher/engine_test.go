package cipher

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/cryptcol/dialect"
	"github.com/syssam/cryptcol/dialect/sql"
)

func TestPGP(t *testing.T) {
	var e Engine = PGP{}
	assert.Equal(t, `pgp_sym_encrypt('123-45-6789', 'k1')`, e.EncryptExpression("123-45-6789", "k1", true))
	assert.Equal(t, `pgp_sym_decrypt('c30d'::bytea, 'k1')`, e.DecryptExpression("c30d", "k1", true))
	assert.Equal(t, `pgp_sym_decrypt("ssn"::bytea, 'k1')`, e.DecryptExpression(`"ssn"`, "k1", false))
	assert.Equal(t, `pgp_sym_encrypt("ssn", 'k1')`, e.EncryptExpression(`"ssn"`, "k1", false))
	assert.Equal(t, `pgp_sym_encrypt(NULL, 'k1')`, e.EncryptExpression("NULL", "k1", false))
	assert.Equal(t, `pgp_sym_encrypt('O''Brien', 'it''s')`, e.EncryptExpression("O'Brien", "it's", true))
	assert.Equal(t, `pgp_sym_encrypt( E'a\\b',  E'k\\1')`, e.EncryptExpression(`a\b`, `k\1`, true))
}

func TestAES(t *testing.T) {
	var e Engine = AES{}
	assert.Equal(t, `AES_ENCRYPT('123-45-6789', 'k1')`, e.EncryptExpression("123-45-6789", "k1", true))
	assert.Equal(t, "CAST(AES_DECRYPT(CAST(`ssn` AS BINARY), 'k1') AS CHAR)", e.DecryptExpression("`ssn`", "k1", false))
	assert.Equal(t, `AES_ENCRYPT('a\\b''c', 'k''1')`, e.EncryptExpression(`a\b'c`, "k'1", true))
}

func TestSecretbox(t *testing.T) {
	var e Engine = Secretbox{}
	assert.Equal(t, `cryptcol_encrypt('123-45-6789', 'k1')`, e.EncryptExpression("123-45-6789", "k1", true))
	assert.Equal(t, `cryptcol_decrypt(CAST("ssn" AS BLOB), 'k1')`, e.DecryptExpression(`"ssn"`, "k1", false))
	assert.Equal(t, `cryptcol_encrypt('a\b', 'O''Brien')`, e.EncryptExpression(`a\b`, "O'Brien", true))
}

func TestKeyRedacted(t *testing.T) {
	k := Key("super-secret")
	assert.Equal(t, "[redacted]", k.String())
	assert.Equal(t, "[redacted]", fmt.Sprint(k))
	assert.Equal(t, "[redacted] [redacted]", fmt.Sprintf("%v %s", k, k))
	assert.Equal(t, "[redacted]", fmt.Sprintf("%#v", k))
	assert.Equal(t, "super-secret", string(k))

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("resolved", "key", k)
	assert.Contains(t, buf.String(), "key=[redacted]")
	assert.NotContains(t, buf.String(), "super-secret")
}

func TestExpressionsRedactKey(t *testing.T) {
	engines := map[string]Engine{
		dialect.Postgres: PGP{},
		dialect.MySQL:    AES{},
		dialect.SQLite:   Secretbox{},
	}
	for d, e := range engines {
		for _, v := range []string{`C:\`, `\`, `a\'b`, "123-45-6789"} {
			for _, expr := range []string{
				e.EncryptExpression(v, "topsecret", true),
				e.DecryptExpression(v, "topsecret", true),
			} {
				got := sql.Redact(d, expr)
				assert.NotContains(t, got, "topsecret", "%s: %s", d, expr)
				assert.NotContains(t, got, v, "%s: %s", d, expr)
			}
		}
	}
}
