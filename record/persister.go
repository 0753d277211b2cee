package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/cryptcol"
	"github.com/syssam/cryptcol/dialect"
	"github.com/syssam/cryptcol/dialect/sql"
	"github.com/syssam/cryptcol/schema"
)

// Driver executes statements for the SQLPersister. *sql.Driver and *sql.Tx
// implement it.
type Driver interface {
	dialect.ExecQuerier
	Dialect() string
}

// SQLPersister is the Persister writing records with the dialect/sql builders.
type SQLPersister struct {
	driver   Driver
	uuidKeys bool
	now      func() time.Time
}

// PersisterOption configures a SQLPersister.
type PersisterOption func(*SQLPersister)

// UUIDKeys makes inserts assign a random UUID to records without a
// primary key instead of reading back a database generated one.
func UUIDKeys() PersisterOption {
	return func(p *SQLPersister) {
		p.uuidKeys = true
	}
}

// WithClock sets the time source for timestamp columns.
func WithClock(now func() time.Time) PersisterOption {
	return func(p *SQLPersister) {
		p.now = now
	}
}

// NewSQLPersister returns a SQLPersister writing through drv.
func NewSQLPersister(drv Driver, opts ...PersisterOption) *SQLPersister {
	p := &SQLPersister{driver: drv, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Insert inserts all attributes of rec. Timestamp columns of the entity
// that are not set are filled with the current time. When rec has no
// primary key, the generated key is read back into rec: with RETURNING on
// PostgreSQL and SQLite, and from LastInsertId on MySQL.
func (p *SQLPersister) Insert(ctx context.Context, rec *Record) error {
	var (
		d     = p.driver.Dialect()
		pk    = rec.entity.PrimaryKey()
		table = schema.TableName(rec.entity)
	)
	if _, ok := rec.ID(); !ok && p.uuidKeys {
		rec.attrs[pk] = uuid.NewString()
	}
	if createdAt, updatedAt, ok := rec.entity.Timestamps(); ok {
		now := p.now()
		p.touch(rec, createdAt, now)
		p.touch(rec, updatedAt, now)
	}
	_, hasKey := rec.ID()
	if !hasKey {
		delete(rec.attrs, pk)
	}
	b := sql.Dialect(d).Insert(table)
	for _, c := range rec.columns() {
		b.Set(c, rec.attrs[c])
	}
	if hasKey || d == dialect.MySQL {
		var res sql.Result
		query, args := b.Query()
		if err := p.driver.Exec(ctx, query, args, &res); err != nil {
			return err
		}
		if !hasKey {
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("record: insert %s: last insert id: %w", table, err)
			}
			rec.attrs[pk] = id
		}
		return nil
	}
	query, args := b.Returning(pk).Query()
	rows := &sql.Rows{}
	if err := p.driver.Query(ctx, query, args, rows); err != nil {
		return err
	}
	ids, err := sql.ScanMaps(rows)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("record: insert %s: no %s returned", table, pk)
	}
	rec.attrs[pk] = ids[0][pk]
	return nil
}

// Update writes every attribute of rec except the primary key, matching
// the row by primary key. The update timestamp column, if any, is set to
// the current time.
func (p *SQLPersister) Update(ctx context.Context, rec *Record) error {
	pk := rec.entity.PrimaryKey()
	id, ok := rec.ID()
	if !ok {
		return cryptcol.NewValidationError("primary key", fmt.Errorf("%s.%s is not set", schema.Name(rec.entity), pk))
	}
	if _, updatedAt, ok := rec.entity.Timestamps(); ok && updatedAt != "" {
		rec.attrs[updatedAt] = p.now()
	}
	u := sql.Dialect(p.driver.Dialect()).Update(schema.TableName(rec.entity))
	for _, c := range rec.columns() {
		if c != pk {
			u.Set(c, rec.attrs[c])
		}
	}
	if u.Empty() {
		return nil
	}
	query, args := u.Where(sql.EQ(pk, id)).Query()
	return p.driver.Exec(ctx, query, args, nil)
}

func (p *SQLPersister) touch(rec *Record, column string, now time.Time) {
	if column == "" {
		return
	}
	if v, ok := rec.attrs[column]; !ok || v == nil {
		rec.attrs[column] = now
	}
}

var _ Persister = (*SQLPersister)(nil)
