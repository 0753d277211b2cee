package schema

import (
	"reflect"
	"slices"

	"github.com/go-openapi/inflect"

	"github.com/syssam/cryptcol/cipher"
)

// Entity is the interface implemented by every entity type.
type Entity interface {
	// Table returns the table name. An empty name is derived from the
	// type name by TableName.
	Table() string
	// PrimaryKey returns the primary key column.
	PrimaryKey() string
	// Fillable returns the mass-assignable columns.
	Fillable() []string
	// Guarded returns the columns protected from mass assignment.
	// They are still selected on read.
	Guarded() []string
	// Hidden returns the columns that are never selected implicitly.
	Hidden() []string
	// Timestamps returns the creation and update timestamp columns.
	// An empty name means the entity does not keep that timestamp.
	Timestamps() (createdAt, updatedAt string, ok bool)
	// ConnectionName returns the name of the connection the entity is
	// stored on. The empty name selects the default connection.
	ConnectionName() string
	// EncryptedFields returns the columns that hold ciphertext, in a fixed order.
	EncryptedFields() []string
}

// KeyProvider is implemented by entities that supply their own encryption key.
type KeyProvider interface {
	EncryptionKey() cipher.Key
}

// Schema is the default implementation of Entity. It should be embedded
// in all entity definitions.
type Schema struct{}

// Table returns an empty name; see TableName.
func (Schema) Table() string { return "" }

// PrimaryKey returns "id".
func (Schema) PrimaryKey() string { return "id" }

// Fillable returns nil.
func (Schema) Fillable() []string { return nil }

// Guarded returns nil.
func (Schema) Guarded() []string { return nil }

// Hidden returns nil.
func (Schema) Hidden() []string { return nil }

// Timestamps reports no timestamps.
func (Schema) Timestamps() (string, string, bool) { return "", "", false }

// ConnectionName returns the default connection.
func (Schema) ConnectionName() string { return "" }

// EncryptedFields returns nil.
func (Schema) EncryptedFields() []string { return nil }

var _ Entity = (*Schema)(nil)

// Name returns the Go type name of the entity.
func Name(e any) string {
	t := reflect.TypeOf(e)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// TableName returns the table of the entity. Unless the entity names it
// explicitly, the table is the pluralized snake case of the type name:
// Person becomes people and UserProfile becomes user_profiles.
func TableName(e Entity) string {
	if t := e.Table(); t != "" {
		return t
	}
	return inflect.Pluralize(inflect.Underscore(Name(e)))
}

// IsEncrypted reports whether column is one of the entity's encrypted fields.
func IsEncrypted(e Entity, column string) bool {
	return slices.Contains(e.EncryptedFields(), column)
}

// Key returns the entity's own encryption key, if it provides one.
func Key(e Entity) (cipher.Key, bool) {
	if kp, ok := e.(KeyProvider); ok {
		if k := kp.EncryptionKey(); k != "" {
			return k, true
		}
	}
	return "", false
}
