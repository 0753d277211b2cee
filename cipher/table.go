package cipher

import (
	"fmt"
	"sort"
	"sync"

	"github.com/syssam/cryptcol/dialect"
)

// Factory creates the Engine for a (driver, cipher) pair.
type Factory func() Engine

// Table maps (driver, cipher) pairs to engine factories. Lookups match both
// names exactly; there is no aliasing or case folding.
type Table struct {
	mu        sync.RWMutex
	factories map[string]map[string]Factory
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{factories: make(map[string]map[string]Factory)}
}

// DefaultTable returns a new table holding the built-in engines:
//
//	postgres/pgp       PGP
//	mysql/aes          AES
//	sqlite/secretbox   Secretbox
func DefaultTable() *Table {
	return NewTable().
		Register(dialect.Postgres, CipherPGP, func() Engine { return PGP{} }).
		Register(dialect.MySQL, CipherAES, func() Engine { return AES{} }).
		Register(dialect.SQLite, CipherSecretbox, func() Engine { return Secretbox{} })
}

// Register adds or replaces the factory for the given pair.
func (t *Table) Register(driver, cipher string, f Factory) *Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.factories[driver] == nil {
		t.factories[driver] = make(map[string]Factory)
	}
	t.factories[driver][cipher] = f
	return t
}

// Ciphers returns the ciphers registered for driver, sorted.
func (t *Table) Ciphers(driver string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.factories[driver]))
	for name := range t.factories[driver] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// engine builds the engine for the pair. A non-empty reason is returned
// when the pair cannot be served.
func (t *Table) engine(driver, cipher string) (Engine, string) {
	t.mu.RLock()
	ciphers, ok := t.factories[driver]
	var f Factory
	if ok {
		f, ok = ciphers[cipher]
	}
	t.mu.RUnlock()
	switch {
	case ciphers == nil:
		return nil, fmt.Sprintf("no cipher engines registered for driver %q", driver)
	case !ok:
		return nil, fmt.Sprintf("cipher %q is not supported by driver %q", cipher, driver)
	case f == nil:
		return nil, fmt.Sprintf("nil engine factory for %s/%s", driver, cipher)
	}
	e := f()
	if e == nil {
		return nil, fmt.Sprintf("engine factory for %s/%s returned nil", driver, cipher)
	}
	return e, ""
}
