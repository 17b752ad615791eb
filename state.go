package activerecord

import (
	"sync"
)

type guardState struct {
	mu        sync.RWMutex
	unguarded bool
}

func (s *guardState) set(unguarded bool) (previous bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, s.unguarded = s.unguarded, unguarded
	return previous
}

func (s *guardState) get() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unguarded
}

// Unguard disable mass assignment protection
func (r *Registry) Unguard() {
	r.guard.set(true)
}

// Reguard enable mass assignment protection
func (r *Registry) Reguard() {
	r.guard.set(false)
}

// IsUnguarded reports whether mass assignment protection is disabled
func (r *Registry) IsUnguarded() bool {
	return r.guard.get()
}

// Unguarded run fn with mass assignment protection disabled, the previous state is restored
// when fn returns, fails or panics
func (r *Registry) Unguarded(fn func() error) error {
	previous := r.guard.set(true)
	defer r.guard.set(previous)
	return fn()
}

// Unguard disable mass assignment protection on DefaultRegistry
func Unguard() { DefaultRegistry.Unguard() }

// Reguard enable mass assignment protection on DefaultRegistry
func Reguard() { DefaultRegistry.Reguard() }

// IsUnguarded reports whether DefaultRegistry is unguarded
func IsUnguarded() bool { return DefaultRegistry.IsUnguarded() }

// Unguarded run fn unguarded on DefaultRegistry
func Unguarded(fn func() error) error { return DefaultRegistry.Unguarded(fn) }

// touchState stack of touch suppression scopes, a nil frame suppresses every definition
type touchState struct {
	mu     sync.RWMutex
	frames [][]*Definition
}

func (s *touchState) push(defs []*Definition) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, defs)
	return len(s.frames) - 1
}

func (s *touchState) pop(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if depth < len(s.frames) {
		s.frames = s.frames[:depth]
	}
}

func (s *touchState) ignoring(def *Definition) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, frame := range s.frames {
		if frame == nil {
			return true
		}
		for _, d := range frame {
			if d == def {
				return true
			}
		}
	}
	return false
}

// WithoutTouching run fn without touching any owner
func (r *Registry) WithoutTouching(fn func() error) error {
	defer r.touching.pop(r.touching.push(nil))
	return fn()
}

// WithoutTouchingOn run fn without touching owners of the given definitions
func (r *Registry) WithoutTouchingOn(defs []*Definition, fn func() error) error {
	if defs == nil {
		defs = []*Definition{}
	}
	defer r.touching.pop(r.touching.push(defs))
	return fn()
}

// IsIgnoringTouch reports whether touching def is suppressed, a nil def asks about the global scope
func (r *Registry) IsIgnoringTouch(def *Definition) bool {
	return r.touching.ignoring(def)
}

// WithoutTouching run fn without touching on DefaultRegistry
func WithoutTouching(fn func() error) error { return DefaultRegistry.WithoutTouching(fn) }

// WithoutTouchingOn run fn without touching defs on DefaultRegistry
func WithoutTouchingOn(defs []*Definition, fn func() error) error {
	return DefaultRegistry.WithoutTouchingOn(defs, fn)
}

// MorphMap aliases stored in morph type columns in place of definition names
type MorphMap struct {
	mu      sync.RWMutex
	aliases map[string]string
}

// NewMorphMap empty morph map
func NewMorphMap() *MorphMap {
	return &MorphMap{aliases: map[string]string{}}
}

// Set register aliases (alias => definition name), merged into the current map when merge is true
func (mm *MorphMap) Set(aliases map[string]string, merge bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if !merge {
		mm.aliases = map[string]string{}
	}
	for alias, name := range aliases {
		mm.aliases[alias] = name
	}
}

// Reset remove every alias
func (mm *MorphMap) Reset() {
	mm.Set(nil, false)
}

// Map copy of the current aliases
func (mm *MorphMap) Map() map[string]string {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	aliases := make(map[string]string, len(mm.aliases))
	for alias, name := range mm.aliases {
		aliases[alias] = name
	}
	return aliases
}

// AliasOf the alias registered for a definition name, or the name itself. When several
// aliases map to name the lexically smallest one wins.
func (mm *MorphMap) AliasOf(name string) string {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	found := ""
	for alias, target := range mm.aliases {
		if target == name && (found == "" || alias < found) {
			found = alias
		}
	}
	if found == "" {
		return name
	}
	return found
}

// Resolve the definition name of alias, or alias itself when unmapped
func (mm *MorphMap) Resolve(alias string) string {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	if name, ok := mm.aliases[alias]; ok {
		return name
	}
	return alias
}

// Scoped run fn with aliases merged into the map, restoring the previous map afterwards
func (mm *MorphMap) Scoped(aliases map[string]string, fn func() error) error {
	previous := mm.Map()
	defer mm.Set(previous, false)

	mm.Set(aliases, true)
	return fn()
}
