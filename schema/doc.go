// Package schema defines the entity-side contract of cryptcol.
//
// An entity describes one table: its columns by visibility, its primary
// key, its timestamps, the connection it lives on and the ordered set of
// columns that are stored encrypted. Embed Schema for the defaults and
// override what differs:
//
//	type Person struct{ schema.Schema }
//
//	func (Person) Fillable() []string        { return []string{"name", "email", "ssn"} }
//	func (Person) Hidden() []string          { return []string{"password"} }
//	func (Person) ConnectionName() string    { return "main" }
//	func (Person) EncryptedFields() []string { return []string{"ssn"} }
//
// Person is stored in the "people" table (see TableName) with an "id"
// primary key. Embed mixin.Time instead of Schema to add the created_at
// and updated_at columns.
//
// An entity that always writes with the same key implements KeyProvider.
package schema
