package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/cryptcol/cipher"
	"github.com/syssam/cryptcol/schema"
)

type Person struct{ schema.Schema }

func (Person) Fillable() []string        { return []string{"name", "ssn"} }
func (Person) EncryptedFields() []string { return []string{"ssn"} }
func (Person) EncryptionKey() cipher.Key { return "k1" }

type UserProfile struct{ schema.Schema }

type Account struct{ schema.Schema }

func (Account) Table() string      { return "legacy_accounts" }
func (Account) PrimaryKey() string { return "account_no" }

func TestSchemaDefaults(t *testing.T) {
	var s schema.Schema
	assert.Equal(t, "", s.Table())
	assert.Equal(t, "id", s.PrimaryKey())
	assert.Nil(t, s.Fillable())
	assert.Nil(t, s.Guarded())
	assert.Nil(t, s.Hidden())
	assert.Nil(t, s.EncryptedFields())
	assert.Equal(t, "", s.ConnectionName())
	c, u, ok := s.Timestamps()
	assert.False(t, ok)
	assert.Empty(t, c)
	assert.Empty(t, u)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "people", schema.TableName(Person{}))
	assert.Equal(t, "people", schema.TableName(&Person{}))
	assert.Equal(t, "user_profiles", schema.TableName(UserProfile{}))
	assert.Equal(t, "legacy_accounts", schema.TableName(Account{}))
}

func TestName(t *testing.T) {
	assert.Equal(t, "Person", schema.Name(Person{}))
	assert.Equal(t, "Person", schema.Name(&Person{}))
	assert.Equal(t, "", schema.Name(nil))
}

func TestIsEncrypted(t *testing.T) {
	assert.True(t, schema.IsEncrypted(Person{}, "ssn"))
	assert.False(t, schema.IsEncrypted(Person{}, "name"))
	assert.False(t, schema.IsEncrypted(Account{}, "ssn"))
}

func TestKey(t *testing.T) {
	k, ok := schema.Key(Person{})
	assert.True(t, ok)
	assert.Equal(t, cipher.Key("k1"), k)

	_, ok = schema.Key(Account{})
	assert.False(t, ok)
}
