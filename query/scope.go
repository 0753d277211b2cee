package query

import "github.com/syssam/cryptcol/dialect/sql"

// Scope is the default decorator of entities with encrypted fields. It
// registers each encrypted field to be read as ciphertext under the alias
// "<field>_encrypted", so plaintext columns are never selected implicitly.
type Scope struct{}

// Decorate implements Decorator.
func (Scope) Decorate(q *Query) *Query {
	d := q.src.driver.Dialect()
	for _, f := range q.src.entity.EncryptedFields() {
		alias := f + "_encrypted"
		q = q.AddEncryptionSelect(Descriptor{
			Column: f,
			Alias:  alias,
			Select: sql.QuoteIdent(d, f) + " AS " + sql.QuoteIdent(d, alias),
		})
	}
	return q
}

var _ Decorator = Scope{}
