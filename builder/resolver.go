package builder

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/go-gorm/activerecord"
)

// Resolver named connections with a default
type Resolver struct {
	mu          sync.RWMutex
	connections map[string]activerecord.Connection
	defaultName string
}

var _ activerecord.ConnectionResolver = (*Resolver)(nil)

// NewResolver resolver of connections, the first one is the default
func NewResolver(connections ...activerecord.Connection) *Resolver {
	r := &Resolver{connections: map[string]activerecord.Connection{}}
	for _, conn := range connections {
		r.AddConnection(conn)
	}
	return r
}

// AddConnection add or replace connection by name
func (r *Resolver) AddConnection(conn activerecord.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defaultName == "" {
		r.defaultName = conn.Name()
	}
	r.connections[conn.Name()] = conn
}

// HasConnection whether connection name is configured
func (r *Resolver) HasConnection(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connections[name]
	return ok
}

// DefaultConnection name of the default connection
func (r *Resolver) DefaultConnection() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// SetDefaultConnection set name of the default connection
func (r *Resolver) SetDefaultConnection(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultName = name
}

// Connection connection by name, an empty name is the default connection
func (r *Resolver) Connection(name string) (activerecord.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaultName
	}
	if conn, ok := r.connections[name]; ok {
		return conn, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownConnection, name)
}

// Close close every connection
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.connections))
	for name := range r.connections {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if closer, ok := r.connections[name].(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
