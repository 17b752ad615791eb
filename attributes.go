package activerecord

import (
	"sort"
	"strings"

	"github.com/go-gorm/activerecord/schema"
)

const jsonPathSeparator = "->"

func sortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// setRaw store value under key, keeping insertion order
func (m *Model) setRaw(key string, value interface{}) {
	if _, ok := m.attributes[key]; !ok {
		m.attrOrder = append(m.attrOrder, key)
	}
	m.attributes[key] = value
}

func (m *Model) accessor(key string) (Accessor, bool) {
	fn, ok := m.def.accessors[schema.ToStudly(key)]
	return fn, ok
}

func (m *Model) mutator(key string) (Mutator, bool) {
	fn, ok := m.def.mutators[schema.ToStudly(key)]
	return fn, ok
}

// HasAccessor reports whether an accessor is declared for key
func (m *Model) HasAccessor(key string) bool {
	_, ok := m.accessor(key)
	return ok
}

// HasMutator reports whether a mutator is declared for key
func (m *Model) HasMutator(key string) bool {
	_, ok := m.mutator(key)
	return ok
}

// Get read key: accessor, then relation (cached or lazily loaded), then the cast attribute.
// Absent attributes read as nil.
func (m *Model) Get(key string) (interface{}, error) {
	if key == "" {
		return nil, nil
	}

	if fn, ok := m.accessor(key); ok {
		return fn(m, m.attributes[key])
	}

	if value, ok := m.relations[key]; ok {
		return value, nil
	}

	if _, ok := m.attributes[key]; !ok && m.def.HasRelation(key) {
		return m.getRelationshipFromMethod(key)
	}

	if strings.Contains(key, jsonPathSeparator) {
		return m.getJSONPath(key)
	}

	return m.GetAttributeValue(key)
}

// GetAttributeValue the cast value of a plain attribute, accessors and relations are skipped
func (m *Model) GetAttributeValue(key string) (interface{}, error) {
	return m.castAttribute(key, m.attributes[key])
}

// Set write key: mutator, then relation, then the attribute map. Dates are stored in the
// model date format and documents are encoded.
func (m *Model) Set(key string, value interface{}) error {
	if key == "" {
		return nil
	}

	if fn, ok := m.mutator(key); ok {
		return fn(m, value)
	}

	if _, ok := m.relations[key]; ok || m.def.HasRelation(key) {
		m.SetRelation(key, value)
		return nil
	}

	if value != nil && m.IsDateAttribute(key) {
		formatted, err := m.FromDateTime(value)
		if err != nil {
			return err
		}
		value = formatted
	}

	if strings.Contains(key, jsonPathSeparator) {
		return m.setJSONPath(key, value)
	}

	if value != nil {
		switch kind, _ := m.castKind(key); {
		case kind.IsJSON():
			encoded, err := schema.EncodeJSON(value)
			if err != nil {
				return &EncodingError{Attribute: key, Model: m.def.Name, Err: err}
			}
			value = encoded
		case kind == schema.Custom:
			stored, err := m.def.casters[key].CastOut(key, value)
			if err != nil {
				return err
			}
			value = stored
		}
	}

	m.setRaw(key, value)
	return nil
}

// SetRawAttribute store value as is, mutators use it to write their result
func (m *Model) SetRawAttribute(key string, value interface{}) *Model {
	m.setRaw(key, value)
	return m
}

// Has reports whether key reads as a non nil value, relations are not lazily loaded
func (m *Model) Has(key string) bool {
	if fn, ok := m.accessor(key); ok {
		value, err := fn(m, m.attributes[key])
		return err == nil && value != nil
	}

	if value, ok := m.relations[key]; ok {
		return value != nil
	}

	if strings.Contains(key, jsonPathSeparator) {
		value, err := m.getJSONPath(key)
		return err == nil && value != nil
	}

	return m.attributes[key] != nil
}

// Unset remove the attribute and the cached relation named key
func (m *Model) Unset(key string) *Model {
	if _, ok := m.attributes[key]; ok {
		delete(m.attributes, key)
		for idx, name := range m.attrOrder {
			if name == key {
				m.attrOrder = append(m.attrOrder[:idx:idx], m.attrOrder[idx+1:]...)
				break
			}
		}
	}
	return m.UnsetRelation(key)
}

// GetAttributes copy of the raw attributes
func (m *Model) GetAttributes() map[string]interface{} {
	attrs := make(map[string]interface{}, len(m.attributes))
	for key, value := range m.attributes {
		attrs[key] = value
	}
	return attrs
}

// AttributeNames attribute names in insertion order
func (m *Model) AttributeNames() []string {
	return append([]string{}, m.attrOrder...)
}

// SetRawAttributes replace every attribute without casting or guarding, sync snapshots
// them as the original state
func (m *Model) SetRawAttributes(attrs map[string]interface{}, sync bool) *Model {
	m.attributes = make(map[string]interface{}, len(attrs))
	m.attrOrder = make([]string, 0, len(attrs))
	for _, key := range sortedKeys(attrs) {
		m.setRaw(key, attrs[key])
	}

	if sync {
		m.SyncOriginal()
	}
	return m
}

// GetOriginal the cast original value of key
func (m *Model) GetOriginal(key string) (interface{}, error) {
	return m.castAttribute(key, m.original[key])
}

// GetRawOriginal the original value of key as stored
func (m *Model) GetRawOriginal(key string) interface{} {
	return m.original[key]
}

// Original copy of the raw original snapshot
func (m *Model) Original() map[string]interface{} {
	original := make(map[string]interface{}, len(m.original))
	for key, value := range m.original {
		original[key] = value
	}
	return original
}

// Only read names into a map
func (m *Model) Only(names ...string) (map[string]interface{}, error) {
	results := make(map[string]interface{}, len(names))
	for _, name := range names {
		value, err := m.Get(name)
		if err != nil {
			return nil, err
		}
		results[name] = value
	}
	return results, nil
}

// MutatedAttributes names of declared accessors, snake cased unless the definition
// disables snake attributes
func (m *Model) MutatedAttributes() []string {
	names := make([]string, 0, len(m.def.accessorOrder))
	for _, studly := range m.def.accessorOrder {
		if m.def.snakeAttributes {
			names = append(names, schema.ToSnake(studly))
		} else {
			names = append(names, schema.ToCamel(studly))
		}
	}
	return names
}

func (m *Model) getJSONPath(key string) (interface{}, error) {
	path := strings.Split(key, jsonPathSeparator)

	current, err := m.GetAttributeValue(path[0])
	if err != nil {
		return nil, err
	}
	if _, ok := current.(string); ok {
		if current, err = schema.DecodeJSON(schema.JSON, current); err != nil {
			return nil, &EncodingError{Attribute: path[0], Model: m.def.Name, Err: err}
		}
	}

	for _, segment := range path[1:] {
		doc, ok := current.(map[string]interface{})
		if !ok {
			return nil, nil
		}
		current = doc[segment]
	}
	return current, nil
}

func (m *Model) setJSONPath(key string, value interface{}) error {
	path := strings.Split(key, jsonPathSeparator)
	root := path[0]

	doc := map[string]interface{}{}
	if raw := m.attributes[root]; raw != nil {
		decoded, err := schema.DecodeJSON(schema.JSON, raw)
		if err != nil {
			return &EncodingError{Attribute: root, Model: m.def.Name, Err: err}
		}
		if existing, ok := decoded.(map[string]interface{}); ok {
			doc = existing
		}
	}

	current := doc
	for _, segment := range path[1 : len(path)-1] {
		next, ok := current[segment].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[segment] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value

	encoded, err := schema.EncodeJSON(doc)
	if err != nil {
		return &EncodingError{Attribute: root, Model: m.def.Name, Err: err}
	}
	m.setRaw(root, encoded)
	return nil
}
