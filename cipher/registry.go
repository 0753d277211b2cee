package cipher

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/cryptcol"
)

// Connection is the encryption-relevant part of a named connection.
type Connection struct {
	Driver string
	Cipher string
}

// ConnectionSource looks up connections by name.
type ConnectionSource interface {
	Lookup(name string) (Connection, bool)
}

// Connections is a static ConnectionSource.
type Connections map[string]Connection

// Lookup implements ConnectionSource.
func (c Connections) Lookup(name string) (Connection, bool) {
	conn, ok := c[name]
	return conn, ok
}

// Connector is implemented by entities bound to a named connection.
type Connector interface {
	ConnectionName() string
}

// Resolver resolves the engine of an entity's connection.
type Resolver interface {
	ServiceForEntity(Connector) (Engine, error)
}

// Registry resolves and caches one Engine per connection name. Engines are
// created on first use and kept for the lifetime of the registry; failed
// resolutions are not cached and are retried on the next call.
type Registry struct {
	source ConnectionSource
	table  *Table
	logger *slog.Logger

	mu      sync.RWMutex
	engines map[string]Engine
	group   singleflight.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithTable sets the registration table. The default is DefaultTable().
func WithTable(t *Table) Option {
	return func(r *Registry) {
		r.table = t
	}
}

// WithLogger sets the logger used for resolution events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry returns a registry resolving connections from src.
func NewRegistry(src ConnectionSource, opts ...Option) *Registry {
	r := &Registry{
		source:  src,
		engines: make(map[string]Engine),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.table == nil {
		r.table = DefaultTable()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// ServiceForEntity returns the engine of the entity's connection.
func (r *Registry) ServiceForEntity(c Connector) (Engine, error) {
	return r.ServiceFor(c.ConnectionName())
}

var _ Resolver = (*Registry)(nil)

// ServiceFor returns the engine of the named connection. It returns a
// *cryptcol.ConfigurationError when the connection is unknown or its
// (driver, cipher) pair has no registered engine.
func (r *Registry) ServiceFor(name string) (Engine, error) {
	r.mu.RLock()
	e, ok := r.engines[name]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}
	v, err, _ := r.group.Do(name, func() (any, error) {
		r.mu.RLock()
		e, ok := r.engines[name]
		r.mu.RUnlock()
		if ok {
			return e, nil
		}
		e, err := r.resolve(name)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.engines[name] = e
		r.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Engine), nil
}

func (r *Registry) resolve(name string) (Engine, error) {
	conn, ok := r.source.Lookup(name)
	if !ok {
		r.logger.Debug("cipher: unknown connection", "connection", name)
		return nil, cryptcol.NewConfigurationError(name, "", "", "connection is not configured")
	}
	if conn.Cipher == "" {
		r.logger.Debug("cipher: no cipher configured", "connection", name, "driver", conn.Driver)
		return nil, cryptcol.NewConfigurationError(name, conn.Driver, "", "no encryption cipher configured")
	}
	e, reason := r.table.engine(conn.Driver, conn.Cipher)
	if reason != "" {
		r.logger.Debug("cipher: resolution failed", "connection", name, "driver", conn.Driver, "cipher", conn.Cipher, "reason", reason)
		return nil, cryptcol.NewConfigurationError(name, conn.Driver, conn.Cipher, reason)
	}
	r.logger.Debug("cipher: engine resolved", "connection", name, "driver", conn.Driver, "cipher", conn.Cipher)
	return e, nil
}
