// Package query implements the read path for entities with encrypted fields.
//
// A Source creates queries for one entity. With the Scope decorator, every
// query projects each encrypted field as ciphertext under a
// "<field>_encrypted" alias and never as plaintext. A query given a decrypt
// key with WithDecryptKey projects the decrypted plaintext under the field's
// own name instead, for that query only:
//
//	people := query.NewSource(Person{}, drv, reg, query.Scope{})
//
//	rows, err := people.Query().All(ctx)
//	// SELECT "id", "name", "ssn" AS "ssn_encrypted" FROM "people"
//
//	rows, err = people.Query().
//		WithDecryptKey(key).
//		FilterDecrypted("ssn", "=", "123-45-6789", key).
//		All(ctx)
//	// SELECT "id", "name", pgp_sym_decrypt("ssn"::bytea, '...') AS "ssn"
//	// FROM "people" WHERE pgp_sym_decrypt("ssn"::bytea, '...') = $1
//
// Queries are immutable: every method returns a new Query and leaves the
// receiver untouched, so a Query can be shared and extended freely.
package query
