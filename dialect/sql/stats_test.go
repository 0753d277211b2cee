package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cryptcol/dialect"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		input   string
		want    string
	}{
		{
			name:    "no_literals",
			dialect: dialect.Postgres,
			input:   `SELECT "id" FROM "people" WHERE "id" = $1`,
			want:    `SELECT "id" FROM "people" WHERE "id" = $1`,
		},
		{
			name:    "decrypt_key",
			dialect: dialect.Postgres,
			input:   `SELECT pgp_sym_decrypt("ssn"::bytea, 'k1') AS "ssn" FROM "people"`,
			want:    `SELECT pgp_sym_decrypt("ssn"::bytea, '***') AS "ssn" FROM "people"`,
		},
		{
			name:    "encrypt_value_and_key",
			dialect: dialect.Postgres,
			input:   `INSERT INTO "people" ("ssn") VALUES (pgp_sym_encrypt('123-45-6789', 'k1'))`,
			want:    `INSERT INTO "people" ("ssn") VALUES (pgp_sym_encrypt('***', '***'))`,
		},
		{
			name:    "doubled_quote",
			dialect: dialect.SQLite,
			input:   `SELECT 'O''Brien', 'x'`,
			want:    `SELECT '***', '***'`,
		},
		{
			name:    "postgres_escape_string",
			dialect: dialect.Postgres,
			input:   `SELECT E'a\\b\'c', 1`,
			want:    `SELECT E'***', 1`,
		},
		{
			name:    "postgres_standard_string_backslash",
			dialect: dialect.Postgres,
			input:   `SELECT pgp_sym_encrypt('C:\', 'topsecret')`,
			want:    `SELECT pgp_sym_encrypt('***', '***')`,
		},
		{
			name:    "postgres_identifier_ending_in_e",
			dialect: dialect.Postgres,
			input:   `SELECT name'C:\', 'topsecret'`,
			want:    `SELECT name'***', '***'`,
		},
		{
			name:    "sqlite_trailing_backslash",
			dialect: dialect.SQLite,
			input:   `SELECT cryptcol_encrypt('C:\', 'topsecret')`,
			want:    `SELECT cryptcol_encrypt('***', '***')`,
		},
		{
			name:    "mysql_escaped_quote",
			dialect: dialect.MySQL,
			input:   `SELECT AES_ENCRYPT('a\'b\\', 'topsecret')`,
			want:    `SELECT AES_ENCRYPT('***', '***')`,
		},
		{
			name:    "unknown_dialect",
			dialect: "oracle",
			input:   `SELECT enc('a', 'topsecret') FROM t`,
			want:    `SELECT enc('***'`,
		},
		{
			name:    "unterminated",
			dialect: dialect.MySQL,
			input:   `SELECT 'secret`,
			want:    `SELECT '***'`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.dialect, tt.input))
		})
	}
}

func TestRedact_QuoteLiteral(t *testing.T) {
	values := []string{`C:\`, `\`, `a'b`, `\'`, `x\\`, `''\`, "plain"}
	for _, d := range []string{dialect.Postgres, dialect.MySQL, dialect.SQLite} {
		for _, v := range values {
			query := "SELECT f(" + QuoteLiteral(d, v) + ", " + QuoteLiteral(d, "topsecret") + ")"
			got := Redact(d, query)
			assert.NotContains(t, got, "topsecret", "%s: %s", d, query)
			assert.True(t, strings.HasSuffix(got, "'***')"), "%s: %s", d, got)
		}
	}
}

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var (
		slowQueries []string
		drv         = NewStatsDriver(OpenDB(dialect.Postgres, db),
			WithSlowThreshold(-1),
			WithSlowQueryHook(func(_ context.Context, query string, _ time.Duration) {
				slowQueries = append(slowQueries, query)
			}),
		)
	)
	assert.Equal(t, dialect.Postgres, drv.Dialect())

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"ssn"}).AddRow("123-45-6789"))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), `SELECT pgp_sym_decrypt("ssn"::bytea, 'k1') AS "ssn" FROM "people"`, []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("UPDATE").WillReturnError(errors.New("boom"))
	require.Error(t, drv.Exec(context.Background(), `UPDATE "people" SET "ssn" = pgp_sym_encrypt('1', 'k1')`, []any{}, nil))
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.QueryStats().Stats()
	assert.EqualValues(t, 1, s.TotalQueries)
	assert.EqualValues(t, 1, s.TotalExecs)
	assert.EqualValues(t, 1, s.Errors)
	assert.EqualValues(t, 2, s.SlowQueries)
	assert.Contains(t, s.String(), "queries=1 execs=1")

	require.Len(t, slowQueries, 2)
	for _, q := range slowQueries {
		assert.NotContains(t, q, "k1")
		assert.Contains(t, q, "'***'")
	}
}

func TestStatsDriver_SetSlowThreshold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var called bool
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db), WithSlowQueryHook(func(context.Context, string, time.Duration) {
		called = true
	}))
	drv.SetSlowThreshold(time.Hour)

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM people", []any{}, nil))
	assert.False(t, called)
	assert.Zero(t, drv.QueryStats().Stats().SlowQueries)
}

func TestWithSlowQueryLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	drv := NewStatsDriver(OpenDB(dialect.MySQL, db), WithSlowThreshold(-1), WithSlowQueryLog(logger))

	mock.ExpectExec("INSERT").WithArgs("Ariel").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, drv.Exec(context.Background(), "INSERT INTO `people` (`name`, `ssn`) VALUES (?, AES_ENCRYPT('123-45-6789', 'k1'))", []any{"Ariel"}, nil))

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.NotContains(t, out, "123-45-6789")
	assert.NotContains(t, out, "k1")
	assert.NotContains(t, out, "Ariel")
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), logger)

	mock.ExpectQuery("SELECT").WithArgs("123-45-6789").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), `SELECT "id" FROM "people" WHERE cryptcol_decrypt(CAST("ssn" AS BLOB), 'k1') = ?`, []any{"123-45-6789"}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM people", []any{}, nil))
	require.NoError(t, mock.ExpectationsWereMet())

	out := buf.String()
	assert.Contains(t, out, "dialect/sql: query")
	assert.Contains(t, out, "dialect/sql: exec")
	assert.Contains(t, out, "args=1")
	assert.NotContains(t, out, "k1")
	assert.NotContains(t, out, "123-45-6789")
}
