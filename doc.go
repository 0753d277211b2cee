// Package cryptcol provides transparent field-level encryption for values
// stored in a relational database.
//
// Application code reads and writes plaintext while the database only ever
// sees ciphertext. Encryption happens inside the database: writes substitute
// each encrypted attribute with an encrypt expression such as
// pgp_sym_encrypt('value', 'key'), and reads project either the ciphertext
// under a "<field>_encrypted" alias or, when a decrypt key is supplied for
// that one query, the decrypted plaintext under the field's own name.
//
// # Packages
//
//   - cipher: SQL expression engines per (driver, cipher) pair and the
//     per-connection Registry that resolves and caches them
//   - record: the write path; Encrypter substitutes, persists and restores
//   - query: the read path; immutable queries with column resolution,
//     decrypt-aware filters and ordering, and the default Scope
//   - schema: the entity-side contract (encrypted fields, visibility, keys)
//   - config: YAML connection configuration
//   - dialect, dialect/sql: driver abstraction and SQL builders
//   - dialect/sql/sqlerr: classification of driver errors
//   - cmd/cryptcol: command line tool to check connections and encrypt
//     existing columns
//
// # Usage
//
//	reg := cipher.NewRegistry(cfg)
//	people := query.NewSource(Person{}, drv, reg, query.Scope{})
//	enc := record.NewEncrypter(reg, record.NewSQLPersister(drv))
//
//	p := record.New(Person{}, map[string]any{"name": "Ann", "ssn": "123-45-6789"}, record.WithKey(key))
//	if err := enc.PerformInsert(ctx, p); err != nil {
//	    return err
//	}
//
//	rows, err := people.Query().
//	    WithDecryptKey(key).
//	    FilterDecrypted("ssn", "=", "123-45-6789", key).
//	    All(ctx)
//
// This package holds the error taxonomy shared by all of the above.
package cryptcol
