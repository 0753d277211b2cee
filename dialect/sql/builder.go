package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/cryptcol/dialect"
)

// Querier wraps the basic Query method that is implemented
// by the different builders in this file.
type Querier interface {
	// Query returns the query representation of the element
	// and its arguments (if any).
	Query() (string, []any)
}

// Raw is a SQL fragment that is written verbatim wherever a value or a
// column is expected. It is never bound as an argument.
type Raw string

// Query implements the Querier interface.
func (r Raw) Query() (string, []any) { return string(r), nil }

// Builder is the base query builder for the sql dsl.
type Builder struct {
	sb      *strings.Builder // underlying builder.
	dialect string           // configured dialect.
	args    []any            // query parameters.
	total   int              // total number of parameters in query tree.
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// SetDialect sets the builder dialect. It's used for garnering dialect specific queries.
func (b *Builder) SetDialect(dialect string) { b.dialect = dialect }

func (b *Builder) init() {
	if b.sb == nil {
		b.sb = &strings.Builder{}
	}
}

// WriteString writes the given string as-is.
func (b *Builder) WriteString(s string) *Builder {
	b.init()
	b.sb.WriteString(s)
	return b
}

// WriteByte wraps the Buffer.WriteByte to make it chainable with other methods.
func (b *Builder) WriteByte(c byte) *Builder {
	b.init()
	b.sb.WriteByte(c)
	return b
}

// Pad adds a space to the query.
func (b *Builder) Pad() *Builder { return b.WriteByte(' ') }

// Ident appends the given string as a quoted identifier.
func (b *Builder) Ident(s string) *Builder {
	return b.WriteString(QuoteIdent(b.dialect, s))
}

// Column writes a column reference. Plain identifiers are quoted, "*" and
// expressions (anything that is not an identifier) are written verbatim.
func (b *Builder) Column(c string) *Builder {
	if c == "*" || !IsIdentifier(c) {
		return b.WriteString(c)
	}
	return b.Ident(c)
}

// Arg appends an input argument to the builder. Querier values, such as Raw,
// are inlined instead of being bound.
func (b *Builder) Arg(a any) *Builder {
	if q, ok := a.(Querier); ok {
		query, args := q.Query()
		b.WriteString(query)
		b.args = append(b.args, args...)
		return b
	}
	b.total++
	b.args = append(b.args, a)
	if b.dialect == dialect.Postgres {
		return b.WriteString("$" + strconv.Itoa(b.total))
	}
	return b.WriteByte('?')
}

// Args appends a list of arguments to the builder, separated by commas.
func (b *Builder) Args(a ...any) *Builder {
	for i := range a {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(a[i])
	}
	return b
}

// String returns the accumulated string.
func (b *Builder) String() string {
	if b.sb == nil {
		return ""
	}
	return b.sb.String()
}

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any) {
	return b.String(), b.args
}

// DialectBuilder prefixes all root builders with the `Dialect` constructor.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{name}
}

// Select creates a Selector for the configured dialect.
//
//	Dialect(dialect.Postgres).
//		Select("id", "name").
//		From("users")
func (d *DialectBuilder) Select(columns ...string) *Selector {
	s := Select(columns...)
	s.SetDialect(d.dialect)
	return s
}

// Insert creates an InsertBuilder for the configured dialect.
//
//	Dialect(dialect.Postgres).
//		Insert("users").Set("age", 1)
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	b := Insert(table)
	b.SetDialect(d.dialect)
	return b
}

// Update creates an UpdateBuilder for the configured dialect.
//
//	Dialect(dialect.Postgres).
//		Update("users").Set("name", "foo")
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	b := Update(table)
	b.SetDialect(d.dialect)
	return b
}

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	Builder
	table   string
	columns []string
	where   Predicate
	order   []func(*Builder)
	limit   *int
}

// Select returns a new selector for the `SELECT` statement.
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// From sets the source table of the `SELECT` statement.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Table returns the source table of the selector.
func (s *Selector) Table() string { return s.table }

// Columns sets the columns of the selector, replacing any previous ones.
func (s *Selector) Columns(columns ...string) *Selector {
	s.columns = columns
	return s
}

// SelectedColumns returns the selected columns in the Selector.
func (s *Selector) SelectedColumns() []string {
	return s.columns
}

// Where sets or appends the given predicate to the statement, joined with AND.
func (s *Selector) Where(p Predicate) *Selector {
	if s.where != nil {
		p = And(s.where, p)
	}
	s.where = p
	return s
}

// OrWhere appends the given predicate to the statement, joined with OR.
// The predicates added so far form the left operand, so
// Where(a).OrWhere(b).Where(c) renders as (a OR b) AND c.
func (s *Selector) OrWhere(p Predicate) *Selector {
	if s.where != nil {
		p = Or(s.where, p)
	}
	s.where = p
	return s
}

// OrderBy appends a column to the `ORDER BY` clause.
func (s *Selector) OrderBy(column, direction string) *Selector {
	s.order = append(s.order, func(b *Builder) {
		b.Column(column)
		if direction != "" {
			b.Pad().WriteString(direction)
		}
	})
	return s
}

// OrderExpr appends a raw expression to the `ORDER BY` clause.
func (s *Selector) OrderExpr(expr, direction string) *Selector {
	s.order = append(s.order, func(b *Builder) {
		b.WriteString(expr)
		if direction != "" {
			b.Pad().WriteString(direction)
		}
	})
	return s
}

// Limit adds the `LIMIT` clause to the `SELECT` statement.
func (s *Selector) Limit(limit int) *Selector {
	s.limit = &limit
	return s
}

// Query returns query representation of a `SELECT` statement.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect}
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteByte('*')
	}
	for i, c := range s.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Column(c)
	}
	b.WriteString(" FROM ").Ident(s.table)
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where(b)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range s.order {
			if i > 0 {
				b.WriteString(", ")
			}
			o(b)
		}
	}
	if s.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	}
	return b.Query()
}

// InsertBuilder is a builder for `INSERT INTO` statement.
type InsertBuilder struct {
	Builder
	table     string
	columns   []string
	values    []any
	returning []string
}

// Insert creates a builder for the `INSERT INTO` statement.
//
//	Insert("users").
//		Set("name", "foo").
//		Set("ssn", Raw("pgp_sym_encrypt('123', 'k')"))
func Insert(table string) *InsertBuilder { return &InsertBuilder{table: table} }

// Set is a syntactic sugar API for inserting only one row.
func (i *InsertBuilder) Set(column string, v any) *InsertBuilder {
	i.columns = append(i.columns, column)
	i.values = append(i.values, v)
	return i
}

// Returning adds the `RETURNING` clause to the insert statement.
// It is ignored by dialects without support for it (MySQL).
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// Query returns query representation of an `INSERT INTO` statement.
func (i *InsertBuilder) Query() (string, []any) {
	b := &Builder{dialect: i.dialect}
	b.WriteString("INSERT INTO ").Ident(i.table)
	switch {
	case len(i.columns) == 0 && i.dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	case len(i.columns) == 0:
		b.WriteString(" DEFAULT VALUES")
	default:
		b.WriteString(" (")
		for j, c := range i.columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
		b.WriteString(") VALUES (").Args(i.values...).WriteByte(')')
	}
	if len(i.returning) > 0 && i.dialect != dialect.MySQL {
		b.WriteString(" RETURNING ")
		for j, c := range i.returning {
			if j > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	return b.Query()
}

// UpdateBuilder is a builder for `UPDATE` statement.
type UpdateBuilder struct {
	Builder
	table   string
	columns []string
	values  []any
	where   Predicate
}

// Update creates a builder for the `UPDATE` statement.
//
//	Update("users").Set("name", "foo").Where(EQ("id", 1))
func Update(table string) *UpdateBuilder { return &UpdateBuilder{table: table} }

// Set sets a column to a given value. Querier values are inlined.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where adds a where predicate for update statement, joined with AND.
func (u *UpdateBuilder) Where(p Predicate) *UpdateBuilder {
	if u.where != nil {
		p = And(u.where, p)
	}
	u.where = p
	return u
}

// Empty reports whether this builder does not contain update changes.
func (u *UpdateBuilder) Empty() bool {
	return len(u.columns) == 0
}

// Query returns query representation of an `UPDATE` statement.
func (u *UpdateBuilder) Query() (string, []any) {
	b := &Builder{dialect: u.dialect}
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, c := range u.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c).WriteString(" = ").Arg(u.values[i])
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		u.where(b)
	}
	return b.Query()
}
