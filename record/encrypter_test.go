package record_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cryptcol"
	"github.com/syssam/cryptcol/cipher"
	"github.com/syssam/cryptcol/dialect"
	"github.com/syssam/cryptcol/dialect/sql"
	"github.com/syssam/cryptcol/record"
	"github.com/syssam/cryptcol/schema"
	"github.com/syssam/cryptcol/schema/mixin"
)

type Person struct{ schema.Schema }

func (Person) Fillable() []string        { return []string{"name", "ssn"} }
func (Person) EncryptedFields() []string { return []string{"ssn"} }

type Patient struct{ mixin.Time }

func (Patient) EncryptedFields() []string { return []string{"ssn", "diagnosis"} }
func (Patient) EncryptionKey() cipher.Key { return "entity-key" }

type Tag struct{ schema.Schema }

func registry(d, c string) *cipher.Registry {
	return cipher.NewRegistry(cipher.Connections{"": {Driver: d, Cipher: c}})
}

func mockDriver(t *testing.T, d string) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sql.OpenDB(d, db), mock
}

func TestPerformInsert_Postgres(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	enc := record.NewEncrypter(registry(dialect.Postgres, cipher.CipherPGP), record.NewSQLPersister(drv))

	mock.ExpectQuery(`INSERT INTO "people" ("name", "ssn") VALUES ($1, pgp_sym_encrypt('123-45-6789', 'k1')) RETURNING "id"`).
		WithArgs("Ann").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	p := record.New(Person{}, map[string]any{"name": "Ann", "ssn": "123-45-6789"}, record.WithKey("k1"))
	require.NoError(t, enc.PerformInsert(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())

	v, _ := p.Get("ssn")
	assert.Equal(t, "123-45-6789", v)
	id, ok := p.ID()
	assert.True(t, ok)
	assert.EqualValues(t, 1, id)
	assert.True(t, p.Exists())
}

func TestPerformInsert_MySQL(t *testing.T) {
	drv, mock := mockDriver(t, dialect.MySQL)
	enc := record.NewEncrypter(registry(dialect.MySQL, cipher.CipherAES), record.NewSQLPersister(drv))

	mock.ExpectExec("INSERT INTO `people` (`name`, `ssn`) VALUES (?, AES_ENCRYPT('O''Brien', 'k1'))").
		WithArgs("Ann").
		WillReturnResult(sqlmock.NewResult(42, 1))

	p := record.New(Person{}, map[string]any{"name": "Ann", "ssn": "O'Brien"}, record.WithKey("k1"))
	require.NoError(t, enc.PerformInsert(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())

	id, _ := p.ID()
	assert.Equal(t, int64(42), id)
	v, _ := p.Get("ssn")
	assert.Equal(t, "O'Brien", v)
}

func TestPerformInsert_UUIDKeys(t *testing.T) {
	drv, mock := mockDriver(t, dialect.SQLite)
	enc := record.NewEncrypter(registry(dialect.SQLite, cipher.CipherSecretbox), record.NewSQLPersister(drv, record.UUIDKeys()))

	mock.ExpectExec(`INSERT INTO "people" ("id", "name", "ssn") VALUES (?, ?, cryptcol_encrypt('123-45-6789', 'k1'))`).
		WithArgs(sqlmock.AnyArg(), "Ann").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := record.New(Person{}, map[string]any{"name": "Ann", "ssn": "123-45-6789"}, record.WithKey("k1"))
	require.NoError(t, enc.PerformInsert(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())

	id, ok := p.ID()
	require.True(t, ok)
	assert.Len(t, id, 36)
}

func TestPerformInsert_Timestamps(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	enc := record.NewEncrypter(
		registry(dialect.Postgres, cipher.CipherPGP),
		record.NewSQLPersister(drv, record.WithClock(func() time.Time { return now })),
	)

	mock.ExpectQuery(`INSERT INTO "patients" ("created_at", "diagnosis", "ssn", "updated_at") VALUES ($1, pgp_sym_encrypt(NULL, 'entity-key'), pgp_sym_encrypt('123-45-6789', 'entity-key'), $2) RETURNING "id"`).
		WithArgs(now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	p := record.New(Patient{}, map[string]any{"ssn": "123-45-6789", "diagnosis": nil})
	require.NoError(t, enc.PerformInsert(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())

	v, ok := p.Get("diagnosis")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestPerformUpdate(t *testing.T) {
	drv, mock := mockDriver(t, dialect.MySQL)
	enc := record.NewEncrypter(registry(dialect.MySQL, cipher.CipherAES), record.NewSQLPersister(drv))

	mock.ExpectExec("UPDATE `people` SET `name` = ?, `ssn` = AES_ENCRYPT('987-65-4321', 'k1') WHERE `id` = ?").
		WithArgs("Ann", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := record.Load(Person{}, map[string]any{"id": 7, "name": "Ann", "ssn": "987-65-4321"}, record.WithKey("k1"))
	require.NoError(t, enc.Save(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())

	v, _ := p.Get("ssn")
	assert.Equal(t, "987-65-4321", v)
}

func TestPerformUpdate_AbsentFieldSkipped(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	enc := record.NewEncrypter(registry(dialect.Postgres, cipher.CipherPGP), record.NewSQLPersister(drv))

	mock.ExpectExec(`UPDATE "people" SET "name" = $1 WHERE "id" = $2`).
		WithArgs("Ann", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := record.Load(Person{}, map[string]any{"id": 7, "name": "Ann"}, record.WithKey("k1"))
	require.NoError(t, enc.PerformUpdate(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())

	_, ok := p.Get("ssn")
	assert.False(t, ok)
}

func TestPerformUpdate_MissingPrimaryKey(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	enc := record.NewEncrypter(registry(dialect.Postgres, cipher.CipherPGP), record.NewSQLPersister(drv))

	p := record.New(Person{}, map[string]any{"name": "Ann", "ssn": "x"}, record.WithKey("k1"))
	err := enc.PerformUpdate(context.Background(), p)
	require.Error(t, err)
	assert.True(t, cryptcol.IsValidationError(err))
	require.NoError(t, mock.ExpectationsWereMet())

	v, _ := p.Get("ssn")
	assert.Equal(t, "x", v)
}

func TestPerform_MissingKey(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	enc := record.NewEncrypter(registry(dialect.Postgres, cipher.CipherPGP), record.NewSQLPersister(drv))

	p := record.New(Person{}, map[string]any{"name": "Ann", "ssn": "123-45-6789"})
	for _, write := range []func(context.Context, *record.Record) error{enc.PerformInsert, enc.PerformUpdate} {
		err := write(context.Background(), p)
		require.Error(t, err)
		assert.True(t, cryptcol.IsMissingKey(err))
		assert.ErrorIs(t, err, cryptcol.ErrMissingKey)
	}
	require.NoError(t, mock.ExpectationsWereMet())

	v, _ := p.Get("ssn")
	assert.Equal(t, "123-45-6789", v)
	assert.False(t, p.Exists())
}

func TestPerform_ConfigurationError(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	enc := record.NewEncrypter(cipher.NewRegistry(cipher.Connections{}), record.NewSQLPersister(drv))

	p := record.New(Person{}, map[string]any{"ssn": "123-45-6789"}, record.WithKey("k1"))
	err := enc.PerformInsert(context.Background(), p)
	require.Error(t, err)
	assert.True(t, cryptcol.IsConfigurationError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPerform_NoEncryptedFields(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	enc := record.NewEncrypter(cipher.NewRegistry(cipher.Connections{}), record.NewSQLPersister(drv))

	mock.ExpectExec(`INSERT INTO "tags" ("id", "name") VALUES ($1, $2)`).
		WithArgs(3, "go").
		WillReturnResult(sqlmock.NewResult(3, 1))

	require.NoError(t, enc.PerformInsert(context.Background(), record.New(Tag{}, map[string]any{"id": 3, "name": "go"})))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPerform_RestoresOnFailure(t *testing.T) {
	drv, mock := mockDriver(t, dialect.Postgres)
	enc := record.NewEncrypter(registry(dialect.Postgres, cipher.CipherPGP), record.NewSQLPersister(drv))

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(`INSERT INTO "people" ("name", "ssn") VALUES ($1, pgp_sym_encrypt(upper('x'), 'k1')) RETURNING "id"`).
		WithArgs("Ann").
		WillReturnError(dbErr)

	p := record.New(Person{}, map[string]any{"name": "Ann", "ssn": sql.Raw(`upper('x')`)}, record.WithKey("k1"))
	err := enc.PerformInsert(context.Background(), p)
	require.ErrorIs(t, err, dbErr)
	require.NoError(t, mock.ExpectationsWereMet())

	v, _ := p.Get("ssn")
	assert.Equal(t, sql.Raw(`upper('x')`), v)
	assert.False(t, p.Exists())
}

type capture struct {
	seen  map[string]any
	panic bool
}

func (c *capture) Insert(_ context.Context, r *record.Record) error {
	c.seen = r.Attributes()
	if c.panic {
		panic("storage exploded")
	}
	return nil
}

func (c *capture) Update(ctx context.Context, r *record.Record) error { return c.Insert(ctx, r) }

func TestPerform_RestoresOnPanic(t *testing.T) {
	next := &capture{panic: true}
	enc := record.NewEncrypter(registry(dialect.Postgres, cipher.CipherPGP), next)
	p := record.New(Person{}, map[string]any{"ssn": "123-45-6789"}, record.WithKey("k1"))

	assert.PanicsWithValue(t, "storage exploded", func() {
		_ = enc.PerformInsert(context.Background(), p)
	})
	assert.Equal(t, sql.Raw(`pgp_sym_encrypt('123-45-6789', 'k1')`), next.seen["ssn"])
	v, _ := p.Get("ssn")
	assert.Equal(t, "123-45-6789", v)
}

func TestPerform_DoesNotLogSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	next := &capture{}
	enc := record.NewEncrypter(registry(dialect.Postgres, cipher.CipherPGP), next, record.WithLogger(logger))

	p := record.New(Person{}, map[string]any{"ssn": "123-45-6789"}, record.WithKey("k1"))
	require.NoError(t, enc.PerformUpdate(context.Background(), p))

	out := buf.String()
	assert.Contains(t, out, "record: encrypting write")
	assert.Contains(t, out, "entity=Person")
	assert.NotContains(t, out, "123-45-6789")
	assert.NotContains(t, out, "k1")
}
