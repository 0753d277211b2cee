package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/cryptcol/dialect"
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		pred      Predicate
		wantQuery string
		wantArgs  []any
	}{
		{"eq", EQ("a", 1), `"a" = $1`, []any{1}},
		{"neq", NEQ("a", 1), `"a" <> $1`, []any{1}},
		{"gt", GT("a", 1), `"a" > $1`, []any{1}},
		{"gte", GTE("a", 1), `"a" >= $1`, []any{1}},
		{"lt", LT("a", 1), `"a" < $1`, []any{1}},
		{"lte", LTE("a", 1), `"a" <= $1`, []any{1}},
		{"op", Op("name", OpLike, "a%"), `"name" LIKE $1`, []any{"a%"}},
		{"is_null", IsNull("a"), `"a" IS NULL`, nil},
		{"not_null", NotNull("a"), `"a" IS NOT NULL`, nil},
		{"in", In("a", 1, 2), `"a" IN ($1, $2)`, []any{1, 2}},
		{"in_empty", In("a"), `FALSE`, nil},
		{"and", And(EQ("a", 1), EQ("b", 2)), `"a" = $1 AND "b" = $2`, []any{1, 2}},
		{"or", Or(EQ("a", 1), EQ("b", 2)), `("a" = $1 OR "b" = $2)`, []any{1, 2}},
		{"or_single", Or(EQ("a", 1)), `"a" = $1`, []any{1}},
		{"not", Not(EQ("a", 1)), `NOT ("a" = $1)`, []any{1}},
		{"expr", ExprOp(`lower("a")`, OpEQ, "x"), `lower("a") = $1`, []any{"x"}},
		{"raw_value", EQ("a", Raw("NOW()")), `"a" = NOW()`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Builder{dialect: dialect.Postgres}
			tt.pred(b)
			query, args := b.Query()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestNormalizeOp(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "=", true},
		{"=", "=", true},
		{"!=", "<>", true},
		{"<>", "<>", true},
		{">=", ">=", true},
		{"like", "LIKE", true},
		{" not   like ", "NOT LIKE", true},
		{"ilike", "ILIKE", true},
		{"==", "", false},
		{"; DROP TABLE people", "", false},
		{"IN", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeOp(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNormalizeDirection(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "ASC", true},
		{"asc", "ASC", true},
		{" DESC ", "DESC", true},
		{"desc", "DESC", true},
		{"down", "", false},
		{"ASC; --", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDirection(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
