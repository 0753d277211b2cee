package sql

import "strings"

// Predicate writes a boolean SQL expression into a Builder. Arguments are
// bound through the builder, so placeholders are numbered per statement.
type Predicate func(*Builder)

// Comparison operators accepted by Op and ExprOp.
const (
	OpEQ      = "="
	OpNEQ     = "<>"
	OpGT      = ">"
	OpGTE     = ">="
	OpLT      = "<"
	OpLTE     = "<="
	OpLike    = "LIKE"
	OpNotLike = "NOT LIKE"
	OpILike   = "ILIKE"
)

// NormalizeOp validates a comparison operator and returns its canonical form.
// An empty operator means equality, and "!=" is an alias of "<>".
func NormalizeOp(op string) (string, bool) {
	switch o := strings.ToUpper(strings.Join(strings.Fields(op), " ")); o {
	case "":
		return OpEQ, true
	case "!=":
		return OpNEQ, true
	case OpEQ, OpNEQ, OpGT, OpGTE, OpLT, OpLTE, OpLike, OpNotLike, OpILike:
		return o, true
	}
	return "", false
}

// NormalizeDirection validates a sort direction and returns "ASC" or "DESC".
// An empty direction means ascending.
func NormalizeDirection(dir string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "", "ASC":
		return "ASC", true
	case "DESC":
		return "DESC", true
	}
	return "", false
}

// Op returns a predicate comparing a column with a bound value.
// The operator is written as-is; callers validate it with NormalizeOp.
func Op(column, op string, v any) Predicate {
	return func(b *Builder) {
		b.Column(column).Pad().WriteString(op).Pad().Arg(v)
	}
}

// ExprOp returns a predicate comparing a raw SQL expression with a bound value.
func ExprOp(expr, op string, v any) Predicate {
	return func(b *Builder) {
		b.WriteString(expr).Pad().WriteString(op).Pad().Arg(v)
	}
}

// EQ returns a "=" predicate.
func EQ(column string, v any) Predicate { return Op(column, OpEQ, v) }

// NEQ returns a "<>" predicate.
func NEQ(column string, v any) Predicate { return Op(column, OpNEQ, v) }

// GT returns a ">" predicate.
func GT(column string, v any) Predicate { return Op(column, OpGT, v) }

// GTE returns a ">=" predicate.
func GTE(column string, v any) Predicate { return Op(column, OpGTE, v) }

// LT returns a "<" predicate.
func LT(column string, v any) Predicate { return Op(column, OpLT, v) }

// LTE returns a "<=" predicate.
func LTE(column string, v any) Predicate { return Op(column, OpLTE, v) }

// IsNull returns the `IS NULL` predicate.
func IsNull(column string) Predicate {
	return func(b *Builder) {
		b.Column(column).WriteString(" IS NULL")
	}
}

// NotNull returns the `IS NOT NULL` predicate.
func NotNull(column string) Predicate {
	return func(b *Builder) {
		b.Column(column).WriteString(" IS NOT NULL")
	}
}

// In returns the `IN` predicate. An empty list never matches.
func In(column string, args ...any) Predicate {
	return func(b *Builder) {
		if len(args) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Column(column).WriteString(" IN (").Args(args...).WriteByte(')')
	}
}

// And combines all given predicates with AND.
func And(preds ...Predicate) Predicate {
	return join(" AND ", false, preds)
}

// Or combines all given predicates with OR. The group is parenthesized so it
// keeps its meaning when and-ed with other predicates.
func Or(preds ...Predicate) Predicate {
	return join(" OR ", true, preds)
}

// Not wraps the given predicate with the NOT operator.
func Not(pred Predicate) Predicate {
	return func(b *Builder) {
		b.WriteString("NOT (")
		pred(b)
		b.WriteByte(')')
	}
}

func join(sep string, wrap bool, preds []Predicate) Predicate {
	return func(b *Builder) {
		wrap := wrap && len(preds) > 1
		if wrap {
			b.WriteByte('(')
		}
		for i, p := range preds {
			if i > 0 {
				b.WriteString(sep)
			}
			p(b)
		}
		if wrap {
			b.WriteByte(')')
		}
	}
}
