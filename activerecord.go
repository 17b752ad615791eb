package activerecord

import (
	"fmt"
	"sync"

	"github.com/go-gorm/activerecord/events"
)

// Registry process-wide model state: config, definitions, guard and touch scopes, morph map
type Registry struct {
	*Config

	mu          sync.Mutex
	definitions map[string]*Definition
	booted      map[*Definition]bool
	observed    map[string]map[string]bool // model name -> observer event keys

	guard    guardState
	touching touchState
	morphMap *MorphMap
}

// DefaultRegistry registry used by the package level helpers
var DefaultRegistry = NewRegistry()

// NewRegistry initialize a registry with opts
func NewRegistry(opts ...ConfigOption) *Registry {
	r := &Registry{
		Config:      &Config{},
		definitions: map[string]*Definition{},
		booted:      map[*Definition]bool{},
		observed:    map[string]map[string]bool{},
		morphMap:    NewMorphMap(),
	}
	r.Configure(opts...)
	return r
}

// Configure apply opts to the registry config
func (r *Registry) Configure(opts ...ConfigOption) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, opt := range opts {
		opt(r.Config)
	}
	r.Config.applyDefaults()
	if r.Dispatcher == nil {
		r.Dispatcher = events.New()
	}
	return r
}

// Configure apply opts to DefaultRegistry
func Configure(opts ...ConfigOption) *Registry {
	return DefaultRegistry.Configure(opts...)
}

func (r *Registry) register(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Name] = def
}

// Definition lookup a registered definition by name
func (r *Registry) Definition(name string) (*Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def, ok := r.definitions[name]; ok {
		return def, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
}

// bootIfNotBooted run the definition's boot callbacks once per registry
func (r *Registry) bootIfNotBooted(def *Definition) {
	r.mu.Lock()
	if r.booted[def] {
		r.mu.Unlock()
		return
	}
	r.booted[def] = true
	r.mu.Unlock()

	for _, boot := range def.boots {
		boot(def)
	}
}

// IsBooted reports whether def was booted on this registry
func (r *Registry) IsBooted(def *Definition) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted[def]
}

// ClearBooted forget booted definitions, they boot again on their next instance
func (r *Registry) ClearBooted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booted = map[*Definition]bool{}
}

// MorphMap morph class aliases of the registry
func (r *Registry) MorphMap() *MorphMap {
	return r.morphMap
}
