package query

import (
	"log/slog"

	"github.com/syssam/cryptcol/cipher"
	"github.com/syssam/cryptcol/dialect"
	"github.com/syssam/cryptcol/schema"
)

// Driver executes queries for a Source. *sql.Driver and *sql.Tx implement it.
type Driver interface {
	dialect.ExecQuerier
	Dialect() string
}

// Decorator adjusts every query created by a Source.
type Decorator interface {
	Decorate(*Query) *Query
}

// DecoratorFunc adapts a function to a Decorator.
type DecoratorFunc func(*Query) *Query

// Decorate calls f(q).
func (f DecoratorFunc) Decorate(q *Query) *Query { return f(q) }

// Source creates queries for one entity.
type Source struct {
	entity     schema.Entity
	driver     Driver
	resolver   cipher.Resolver
	decorators []Decorator
	logger     *slog.Logger
}

// NewSource returns a Source of entity e. Every query it creates is passed
// through the decorators, in order.
func NewSource(e schema.Entity, drv Driver, r cipher.Resolver, decorators ...Decorator) *Source {
	return &Source{
		entity:     e,
		driver:     drv,
		resolver:   r,
		decorators: decorators,
		logger:     slog.Default(),
	}
}

// WithLogger returns a copy of the source that logs to l.
func (s *Source) WithLogger(l *slog.Logger) *Source {
	c := *s
	c.logger = l
	return &c
}

// Entity returns the entity of the source.
func (s *Source) Entity() schema.Entity { return s.entity }

// Query returns a new query selecting all visible columns.
func (s *Source) Query() *Query {
	q := &Query{src: s}
	for _, d := range s.decorators {
		q = d.Decorate(q)
	}
	return q
}
