// Package record implements the write path: encrypted attributes of a
// record are replaced by encrypt expressions for the duration of an insert
// or update, then restored to their plaintext.
//
//	enc := record.NewEncrypter(reg, record.NewSQLPersister(drv))
//	p := record.New(Person{}, map[string]any{"name": "Ann", "ssn": "123-45-6789"}, record.WithKey(key))
//	if err := enc.Save(ctx, p); err != nil {
//		return err
//	}
//	p.Get("ssn") // "123-45-6789"
package record

import (
	"maps"
	"slices"

	"github.com/syssam/cryptcol/cipher"
	"github.com/syssam/cryptcol/schema"
)

// Record is one row of an entity, held as a column-keyed attribute map.
// A Record is not safe for concurrent writes.
type Record struct {
	entity schema.Entity
	attrs  map[string]any
	key    cipher.Key
	exists bool
}

// Option configures a Record.
type Option func(*Record)

// WithKey sets the encryption key used when the record is written. It
// takes precedence over a key provided by the entity.
func WithKey(k cipher.Key) Option {
	return func(r *Record) {
		r.key = k
	}
}

// New returns a record of entity e that does not exist in storage yet.
// attrs is copied.
func New(e schema.Entity, attrs map[string]any, opts ...Option) *Record {
	r := &Record{entity: e, attrs: make(map[string]any, len(attrs))}
	maps.Copy(r.attrs, attrs)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load returns a record of entity e that was read from storage.
func Load(e schema.Entity, attrs map[string]any, opts ...Option) *Record {
	r := New(e, attrs, opts...)
	r.exists = true
	return r
}

// Entity returns the entity the record belongs to.
func (r *Record) Entity() schema.Entity { return r.entity }

// Exists reports whether the record was loaded from or saved to storage.
func (r *Record) Exists() bool { return r.exists }

// Get returns the value of an attribute.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// Set sets the value of an attribute.
func (r *Record) Set(name string, v any) { r.attrs[name] = v }

// Unset removes an attribute. An absent attribute is left untouched by writes.
func (r *Record) Unset(name string) { delete(r.attrs, name) }

// Attributes returns a copy of the attribute map.
func (r *Record) Attributes() map[string]any { return maps.Clone(r.attrs) }

// ID returns the primary key value, if set.
func (r *Record) ID() (any, bool) {
	v, ok := r.attrs[r.entity.PrimaryKey()]
	return v, ok && v != nil
}

// SetKey sets the record's encryption key.
func (r *Record) SetKey(k cipher.Key) { r.key = k }

// Key returns the key used to encrypt the record: the record's own key if
// set, otherwise the key provided by the entity.
func (r *Record) Key() (cipher.Key, bool) {
	if r.key != "" {
		return r.key, true
	}
	return schema.Key(r.entity)
}

// columns returns the attribute names in a stable order.
func (r *Record) columns() []string {
	return slices.Sorted(maps.Keys(r.attrs))
}
