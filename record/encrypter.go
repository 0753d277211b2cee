package record

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/syssam/cryptcol"
	"github.com/syssam/cryptcol/cipher"
	"github.com/syssam/cryptcol/dialect/sql"
	"github.com/syssam/cryptcol/schema"
)

// Persister writes records to storage. Encrypted attributes reach it as
// sql.Raw encrypt expressions that must be written verbatim.
type Persister interface {
	Insert(context.Context, *Record) error
	Update(context.Context, *Record) error
}

// Encrypter wraps a Persister with transparent encryption of the entity's
// encrypted fields.
type Encrypter struct {
	resolver cipher.Resolver
	next     Persister
	logger   *slog.Logger
}

// EncrypterOption configures an Encrypter.
type EncrypterOption func(*Encrypter)

// WithLogger sets the logger used for write events.
func WithLogger(l *slog.Logger) EncrypterOption {
	return func(e *Encrypter) {
		e.logger = l
	}
}

// NewEncrypter returns an Encrypter resolving engines with r and writing through next.
func NewEncrypter(r cipher.Resolver, next Persister, opts ...EncrypterOption) *Encrypter {
	e := &Encrypter{resolver: r, next: next}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// PerformInsert inserts rec with its encrypted fields encrypted in the database.
func (e *Encrypter) PerformInsert(ctx context.Context, rec *Record) error {
	if err := e.perform(ctx, rec, "insert", e.next.Insert); err != nil {
		return err
	}
	rec.exists = true
	return nil
}

// PerformUpdate updates rec with its encrypted fields encrypted in the database.
func (e *Encrypter) PerformUpdate(ctx context.Context, rec *Record) error {
	return e.perform(ctx, rec, "update", e.next.Update)
}

// Save updates rec if it exists in storage and inserts it otherwise.
func (e *Encrypter) Save(ctx context.Context, rec *Record) error {
	if rec.exists {
		return e.PerformUpdate(ctx, rec)
	}
	return e.PerformInsert(ctx, rec)
}

// perform substitutes every present encrypted field with its encrypt
// expression, delegates the write and restores the plaintext on return,
// whatever the outcome. Missing keys and unresolvable engines are
// reported before any I/O.
func (e *Encrypter) perform(ctx context.Context, rec *Record, op string, persist func(context.Context, *Record) error) error {
	fields := rec.entity.EncryptedFields()
	if len(fields) == 0 {
		return persist(ctx, rec)
	}
	key, ok := rec.Key()
	if !ok {
		return cryptcol.NewMissingKeyError(schema.Name(rec.entity), op)
	}
	eng, err := e.resolver.ServiceForEntity(rec.entity)
	if err != nil {
		return err
	}
	snapshot := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := rec.attrs[f]; ok {
			snapshot[f] = v
		}
	}
	defer func() {
		for f, v := range snapshot {
			rec.attrs[f] = v
		}
	}()
	for _, f := range fields {
		v, ok := snapshot[f]
		if !ok {
			continue
		}
		text, quote, err := operand(v)
		if err != nil {
			return fmt.Errorf("record: %s %s.%s: %w", op, schema.Name(rec.entity), f, err)
		}
		rec.attrs[f] = sql.Raw(eng.EncryptExpression(text, key, quote))
	}
	e.logger.DebugContext(ctx, "record: encrypting write",
		"entity", schema.Name(rec.entity), "op", op, "fields", len(snapshot))
	return persist(ctx, rec)
}

// operand converts an attribute value to the text of an encrypt
// expression. quote reports whether the text is a literal.
func operand(v any) (text string, quote bool, err error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "NULL", false, nil
	}
	switch v := v.(type) {
	case nil:
		return "NULL", false, nil
	case sql.Raw:
		return string(v), false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	case time.Time:
		return v.Format(time.RFC3339Nano), true, nil
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return "", false, err
		}
		if _, ok := dv.(driver.Valuer); ok {
			return fmt.Sprint(dv), true, nil
		}
		return operand(dv)
	case fmt.Stringer:
		return v.String(), true, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return operand(rv.Elem().Interface())
	}
	return fmt.Sprint(v), true, nil
}
