package query

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/syssam/cryptcol"
	"github.com/syssam/cryptcol/cipher"
	"github.com/syssam/cryptcol/dialect/sql"
	"github.com/syssam/cryptcol/schema"
)

// Descriptor describes how an encrypted column is projected. Column is the
// stored column, Alias the name it is read under and Select the complete
// select expression.
type Descriptor struct {
	Column string
	Alias  string
	Select string
}

// Row is one result row keyed by column name or alias.
type Row map[string]any

type clause struct {
	or   bool
	pred sql.Predicate
}

// Query is an immutable query over the entity of its Source.
type Query struct {
	src         *Source
	columns     []string
	descriptors []Descriptor
	where       []clause
	order       []func(*sql.Selector)
	limit       *int
	err         error
}

func (q *Query) clone() *Query {
	c := *q
	c.columns = slices.Clone(q.columns)
	c.descriptors = slices.Clone(q.descriptors)
	c.where = slices.Clone(q.where)
	c.order = slices.Clone(q.order)
	return &c
}

// fail records the first error; it is returned when the query runs.
func (q *Query) fail(err error) *Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

// Err returns the first error recorded while building the query.
func (q *Query) Err() error { return q.err }

// Select returns a query selecting only the given columns. An encrypted
// column is selected through its descriptor.
func (q *Query) Select(columns ...string) *Query {
	c := q.clone()
	for _, col := range columns {
		if col != "*" && !sql.IsIdentifier(col) {
			return c.fail(cryptcol.NewValidationError("column", fmt.Errorf("%q is not a column name", col)))
		}
	}
	c.columns = slices.Clone(columns)
	return c
}

// Where returns a query with p and-ed to its predicates.
func (q *Query) Where(p sql.Predicate) *Query {
	c := q.clone()
	c.where = append(c.where, clause{pred: p})
	return c
}

// OrWhere returns a query with p or-ed to its predicates.
//
// Predicates group left to right in the order they are added, regardless of
// SQL precedence: Where(a).OrWhere(b).Where(c) is (a OR b) AND c, and
// Where(a).Where(b).OrWhere(c) is (a AND b) OR c.
func (q *Query) OrWhere(p sql.Predicate) *Query {
	c := q.clone()
	c.where = append(c.where, clause{or: true, pred: p})
	return c
}

// Filter returns a query comparing a stored column with value.
func (q *Query) Filter(field, op string, value any) *Query {
	c := q.clone()
	op, err := c.validate(field, op)
	if err != nil {
		return c.fail(err)
	}
	c.where = append(c.where, clause{pred: sql.Op(field, op, value)})
	return c
}

// OrderBy returns a query ordered by a stored column.
func (q *Query) OrderBy(field, dir string) *Query {
	c := q.clone()
	dir, err := c.direction(field, dir)
	if err != nil {
		return c.fail(err)
	}
	c.order = append(c.order, func(s *sql.Selector) { s.OrderBy(field, dir) })
	return c
}

// Limit returns a query returning at most n rows.
func (q *Query) Limit(n int) *Query {
	c := q.clone()
	if n < 0 {
		return c.fail(cryptcol.NewValidationError("limit", fmt.Errorf("%d is negative", n)))
	}
	c.limit = &n
	return c
}

// AddEncryptionSelect returns a query with d registered. A descriptor for
// the same column is replaced in place, keeping its registration order.
func (q *Query) AddEncryptionSelect(d Descriptor) *Query {
	c := q.clone()
	for i := range c.descriptors {
		if c.descriptors[i].Column == d.Column {
			c.descriptors[i] = d
			return c
		}
	}
	c.descriptors = append(c.descriptors, d)
	return c
}

// Descriptors returns the registered descriptors in registration order.
func (q *Query) Descriptors() []Descriptor { return slices.Clone(q.descriptors) }

// WithDecryptKey returns a query that selects every encrypted field
// decrypted with key, under the field's own name.
func (q *Query) WithDecryptKey(key cipher.Key) *Query {
	fields := q.src.entity.EncryptedFields()
	if len(fields) == 0 {
		return q.clone()
	}
	eng, err := q.engine()
	if err != nil {
		return q.clone().fail(err)
	}
	d := q.src.driver.Dialect()
	c := q
	for _, f := range fields {
		c = c.AddEncryptionSelect(Descriptor{
			Column: f,
			Alias:  f,
			Select: eng.DecryptExpression(sql.QuoteIdent(d, f), key, false) + " AS " + sql.QuoteIdent(d, f),
		})
	}
	return c
}

// FilterDecrypted returns a query comparing the decrypted value of field
// with value. A field that is not encrypted is compared as stored.
func (q *Query) FilterDecrypted(field, op string, value any, key cipher.Key) *Query {
	return q.filterDecrypted(false, field, op, value, key)
}

// OrFilterDecrypted is like FilterDecrypted, but or-s the comparison. It
// groups with the predicates added before it, as OrWhere does.
func (q *Query) OrFilterDecrypted(field, op string, value any, key cipher.Key) *Query {
	return q.filterDecrypted(true, field, op, value, key)
}

func (q *Query) filterDecrypted(or bool, field, op string, value any, key cipher.Key) *Query {
	c := q.clone()
	op, err := c.validate(field, op)
	if err != nil {
		return c.fail(err)
	}
	pred := sql.Op(field, op, value)
	if schema.IsEncrypted(c.src.entity, field) {
		expr, err := c.decrypt(field, key)
		if err != nil {
			return c.fail(err)
		}
		pred = sql.ExprOp(expr, op, value)
	}
	c.where = append(c.where, clause{or: or, pred: pred})
	return c
}

// OrderByDecrypted returns a query ordered by the decrypted value of
// field. A field that is not encrypted is ordered as stored.
func (q *Query) OrderByDecrypted(field, dir string, key cipher.Key) *Query {
	c := q.clone()
	dir, err := c.direction(field, dir)
	if err != nil {
		return c.fail(err)
	}
	if !schema.IsEncrypted(c.src.entity, field) {
		c.order = append(c.order, func(s *sql.Selector) { s.OrderBy(field, dir) })
		return c
	}
	expr, err := c.decrypt(field, key)
	if err != nil {
		return c.fail(err)
	}
	c.order = append(c.order, func(s *sql.Selector) { s.OrderExpr(expr, dir) })
	return c
}

func (q *Query) engine() (cipher.Engine, error) {
	return q.src.resolver.ServiceForEntity(q.src.entity)
}

func (q *Query) decrypt(field string, key cipher.Key) (string, error) {
	eng, err := q.engine()
	if err != nil {
		return "", err
	}
	return eng.DecryptExpression(sql.QuoteIdent(q.src.driver.Dialect(), field), key, false), nil
}

func (q *Query) validate(field, op string) (string, error) {
	if !sql.IsIdentifier(field) {
		return "", cryptcol.NewValidationError("column", fmt.Errorf("%q is not a column name", field))
	}
	norm, ok := sql.NormalizeOp(op)
	if !ok {
		return "", cryptcol.NewValidationError("operator", fmt.Errorf("%q is not supported", op))
	}
	return norm, nil
}

func (q *Query) direction(field, dir string) (string, error) {
	if !sql.IsIdentifier(field) {
		return "", cryptcol.NewValidationError("column", fmt.Errorf("%q is not a column name", field))
	}
	norm, ok := sql.NormalizeDirection(dir)
	if !ok {
		return "", cryptcol.NewValidationError("direction", fmt.Errorf("%q is not asc or desc", dir))
	}
	return norm, nil
}

// Columns returns the select list the query runs with.
//
// For entities with encrypted fields, a wildcard selection expands to the
// primary key, the sorted fillable and guarded columns that are neither
// hidden nor registered as descriptors, the timestamp columns, and finally
// the select expression of every descriptor. An explicit selection keeps
// its plain columns in order and appends the select expressions of the
// requested descriptors; an encrypted field requested without a descriptor
// is dropped. A selection left empty by dropping is a ValidationError.
func (q *Query) Columns() ([]string, error) {
	if q.err != nil {
		return nil, q.err
	}
	columns := q.columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	if len(q.src.entity.EncryptedFields()) == 0 {
		return slices.Clone(columns), nil
	}
	if len(columns) == 1 && columns[0] == "*" {
		return q.wildcard(), nil
	}
	resolved := q.explicit(columns)
	if len(resolved) == 0 {
		// An empty list would be rendered as "*".
		return nil, cryptcol.NewValidationError("column", fmt.Errorf("no selectable column in %q", columns))
	}
	return resolved, nil
}

func (q *Query) wildcard() []string {
	e := q.src.entity
	skip := make(map[string]bool)
	for _, c := range e.Hidden() {
		skip[c] = true
	}
	for _, d := range q.descriptors {
		skip[d.Column] = true
	}
	skip["*"] = true
	var visible []string
	for _, c := range slices.Concat(e.Fillable(), e.Guarded()) {
		if !skip[c] {
			skip[c] = true
			visible = append(visible, c)
		}
	}
	sort.Strings(visible)

	pk := e.PrimaryKey()
	columns := []string{pk}
	for _, c := range visible {
		if c != pk {
			columns = append(columns, c)
		}
	}
	if createdAt, updatedAt, ok := e.Timestamps(); ok {
		for _, c := range []string{createdAt, updatedAt} {
			if c != "" && !slices.Contains(columns, c) {
				columns = append(columns, c)
			}
		}
	}
	for _, d := range q.descriptors {
		columns = append(columns, d.Select)
	}
	return columns
}

func (q *Query) explicit(requested []string) []string {
	described := make(map[string]bool, len(q.descriptors))
	for _, d := range q.descriptors {
		described[d.Column] = true
	}
	var columns []string
	for _, c := range requested {
		switch {
		case described[c]:
		case schema.IsEncrypted(q.src.entity, c):
			q.src.logger.Debug("query: dropping encrypted column without descriptor",
				"entity", schema.Name(q.src.entity), "column", c)
		default:
			columns = append(columns, c)
		}
	}
	for _, d := range q.descriptors {
		if slices.Contains(requested, d.Column) {
			columns = append(columns, d.Select)
		}
	}
	return columns
}

func (q *Query) selector() (*sql.Selector, error) {
	columns, err := q.Columns()
	if err != nil {
		return nil, err
	}
	s := sql.Dialect(q.src.driver.Dialect()).
		Select(columns...).
		From(schema.TableName(q.src.entity))
	for _, c := range q.where {
		if c.or {
			s.OrWhere(c.pred)
		} else {
			s.Where(c.pred)
		}
	}
	for _, o := range q.order {
		o(s)
	}
	if q.limit != nil {
		s.Limit(*q.limit)
	}
	return s, nil
}

// SQL returns the statement and arguments the query runs with.
func (q *Query) SQL() (string, []any, error) {
	s, err := q.selector()
	if err != nil {
		return "", nil, err
	}
	query, args := s.Query()
	return query, args, nil
}

// All executes the query and returns all rows.
func (q *Query) All(ctx context.Context) ([]Row, error) {
	query, args, err := q.SQL()
	if err != nil {
		return nil, err
	}
	rows := &sql.Rows{}
	if err := q.src.driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	maps, err := sql.ScanMaps(rows)
	if err != nil {
		return nil, err
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = m
	}
	return out, nil
}

// First executes the query for a single row. It returns
// cryptcol.ErrNotFound when there is none.
func (q *Query) First(ctx context.Context) (Row, error) {
	rows, err := q.Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, cryptcol.ErrNotFound
	}
	return rows[0], nil
}
