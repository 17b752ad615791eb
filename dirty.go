package activerecord

import (
	"reflect"

	"github.com/go-gorm/activerecord/schema"
)

// SyncOriginal snapshot the current attributes as the original state
func (m *Model) SyncOriginal() *Model {
	m.original = m.GetAttributes()
	return m
}

// SyncOriginalAttribute snapshot the current value of keys
func (m *Model) SyncOriginalAttribute(keys ...string) *Model {
	for _, key := range keys {
		if value, ok := m.attributes[key]; ok {
			m.original[key] = value
		} else {
			delete(m.original, key)
		}
	}
	return m
}

// SyncChanges record the dirty attributes as the changes of the last update
func (m *Model) SyncChanges() *Model {
	m.changes = m.GetDirty()
	return m
}

// GetDirty attributes that differ from the original state
func (m *Model) GetDirty() map[string]interface{} {
	dirty := map[string]interface{}{}
	for _, key := range m.dirtyKeys() {
		dirty[key] = m.attributes[key]
	}
	return dirty
}

// GetChanges attributes that differ from the original state
func (m *Model) GetChanges() map[string]interface{} {
	return m.GetDirty()
}

// LastChanges attributes changed by the last successful update
func (m *Model) LastChanges() map[string]interface{} {
	changes := make(map[string]interface{}, len(m.changes))
	for key, value := range m.changes {
		changes[key] = value
	}
	return changes
}

func (m *Model) dirtyKeys() []string {
	var keys []string
	for _, key := range m.attrOrder {
		if !m.originalIsEquivalent(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// IsDirty reports whether any of keys, or any attribute when none are given, changed
func (m *Model) IsDirty(keys ...string) bool {
	return hasChanges(m.GetDirty(), keys)
}

// IsClean negation of IsDirty
func (m *Model) IsClean(keys ...string) bool {
	return !m.IsDirty(keys...)
}

// WasChanged reports whether any of keys, or any attribute, changed in the last update
func (m *Model) WasChanged(keys ...string) bool {
	return hasChanges(m.changes, keys)
}

func hasChanges(changes map[string]interface{}, keys []string) bool {
	if len(keys) == 0 {
		return len(changes) > 0
	}
	for _, key := range keys {
		if _, ok := changes[key]; ok {
			return true
		}
	}
	return false
}

// originalIsEquivalent compares current and original values of key under cast-aware equality
func (m *Model) originalIsEquivalent(key string) bool {
	original, ok := m.original[key]
	if !ok {
		return false
	}
	current := m.attributes[key]

	if reflect.DeepEqual(current, original) {
		return true
	}
	if current == nil || original == nil {
		return false
	}

	if m.IsDateAttribute(key) {
		a, errA := m.FromDateTime(current)
		b, errB := m.FromDateTime(original)
		return errA == nil && errB == nil && a == b
	}

	if m.HasCast(key, schema.Bool) {
		return schema.ToBool(current) == schema.ToBool(original)
	}

	if m.HasCast(key) {
		a, errA := m.castAttribute(key, current)
		b, errB := m.castAttribute(key, original)
		return errA == nil && errB == nil && reflect.DeepEqual(a, b)
	}

	return schema.IsNumeric(current) && schema.IsNumeric(original) &&
		schema.NumericString(current) == schema.NumericString(original)
}
