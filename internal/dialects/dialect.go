// Package dialects provides the identifier quoting and statement templates
// that differ between PostgreSQL and SQLite.
package dialects

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupported is returned by Get for unknown dialect names.
var ErrUnsupported = errors.New("unsupported dialect")

// Default is the name of the dialect used when none is configured.
const Default = "postgres"

// Dialect defines database-specific behaviors.
type Dialect interface {
	Name() string
	QuoteIdentifier(string) string
	Placeholder(int) string
	TruncateSQL(table string) string
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[strings.ToLower(name)] = d
}

// Get retrieves a registered dialect by driver name. An empty name selects
// the default dialect.
func Get(name string) (Dialect, error) {
	if strings.TrimSpace(name) == "" {
		name = Default
	}
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return nil, errors.Join(ErrUnsupported, errors.New("dialect: "+name))
}

// MustGet is like Get but panics on unknown names. It is meant for package
// level variables.
func MustGet(name string) Dialect {
	d, err := Get(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Names returns the registered dialect names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
