package activerecord

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-gorm/activerecord/schema"
	"github.com/go-gorm/activerecord/utils"
)

// arrayable ordered map rendered by MarshalJSON in insertion order
type arrayable struct {
	keys   []string
	values map[string]interface{}
}

func newArrayable() *arrayable {
	return &arrayable{values: map[string]interface{}{}}
}

func (a *arrayable) set(key string, value interface{}) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

func (a *arrayable) merge(other *arrayable) {
	for _, key := range other.keys {
		a.set(key, other.values[key])
	}
}

// toMap plain nested maps and slices
func (a *arrayable) toMap() map[string]interface{} {
	result := make(map[string]interface{}, len(a.keys))
	for _, key := range a.keys {
		result[key] = plain(a.values[key])
	}
	return result
}

func plain(value interface{}) interface{} {
	switch v := value.(type) {
	case *arrayable:
		if v == nil {
			return nil
		}
		return v.toMap()
	case []*arrayable:
		items := make([]map[string]interface{}, len(v))
		for idx, item := range v {
			items[idx] = item.toMap()
		}
		return items
	}
	return value
}

func (a *arrayable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range a.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(a.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GetHidden attributes hidden from serialization
func (m *Model) GetHidden() []string {
	return append([]string{}, m.hidden...)
}

// SetHidden replace the hidden attributes
func (m *Model) SetHidden(names ...string) *Model {
	m.hidden = append([]string{}, names...)
	return m
}

// GetVisible the serialization whitelist
func (m *Model) GetVisible() []string {
	return append([]string{}, m.visible...)
}

// SetVisible replace the serialization whitelist
func (m *Model) SetVisible(names ...string) *Model {
	m.visible = append([]string{}, names...)
	return m
}

// MakeVisible show hidden names, adding them to the whitelist when there is one
func (m *Model) MakeVisible(names ...string) *Model {
	m.hidden = utils.Without(m.hidden, names...)
	if len(m.visible) > 0 {
		m.visible = utils.AppendUnique(m.visible, names...)
	}
	return m
}

// MakeHidden hide names
func (m *Model) MakeHidden(names ...string) *Model {
	m.hidden = utils.AppendUnique(m.hidden, names...)
	return m
}

// GetAppends virtual attributes added to serialization
func (m *Model) GetAppends() []string {
	return append([]string{}, m.appends...)
}

// SetAppends replace the appended attributes
func (m *Model) SetAppends(names ...string) *Model {
	m.appends = append([]string{}, names...)
	return m
}

// Append add appended attributes
func (m *Model) Append(names ...string) *Model {
	m.appends = utils.AppendUnique(m.appends, names...)
	return m
}

// HasAppended reports whether name is appended
func (m *Model) HasAppended(name string) bool {
	return utils.Contains(m.appends, name)
}

// arrayableItems names minus hidden, intersected with visible when set
func (m *Model) arrayableItems(names []string) []string {
	if len(m.visible) > 0 {
		names = utils.Intersect(names, m.visible)
	}
	return utils.Without(names, m.hidden...)
}

// AttributesToArray serializable attributes, appends included
func (m *Model) AttributesToArray() (map[string]interface{}, error) {
	attrs, err := m.attributesToArrayable(true)
	if err != nil {
		return nil, err
	}
	return attrs.toMap(), nil
}

func (m *Model) attributesToArrayable(withAppends bool) (*arrayable, error) {
	result := newArrayable()
	for _, key := range m.arrayableItems(m.attrOrder) {
		value, err := m.serializeAttribute(key)
		if err != nil {
			return nil, err
		}
		result.set(key, value)
	}

	if withAppends {
		appends, err := m.appendsToArrayable()
		if err != nil {
			return nil, err
		}
		result.merge(appends)
	}
	return result, nil
}

func (m *Model) appendsToArrayable() (*arrayable, error) {
	result := newArrayable()
	for _, key := range m.arrayableItems(m.appends) {
		value, err := m.Get(key)
		if err != nil {
			return nil, err
		}
		result.set(key, serializeValue(value, m.DateFormat()))
	}
	return result, nil
}

// serializeAttribute array-safe form of attribute key: accessors apply, dates are formatted,
// timestamps are epochs and documents are decoded
func (m *Model) serializeAttribute(key string) (interface{}, error) {
	raw := m.attributes[key]

	if fn, ok := m.accessor(key); ok {
		value, err := fn(m, raw)
		if err != nil {
			return nil, err
		}
		return serializeValue(value, m.DateFormat()), nil
	}

	value, err := m.castAttribute(key, raw)
	if err != nil || value == nil {
		return value, err
	}

	if kind, _ := m.castKind(key); kind == schema.Date {
		return serializeValue(value, schema.DateOnlyFormat), nil
	}
	return serializeValue(value, m.DateFormat()), nil
}

func serializeValue(value interface{}, dateFormat string) interface{} {
	switch v := value.(type) {
	case time.Time:
		return schema.FormatTime(v, dateFormat)
	case *time.Time:
		if v == nil {
			return nil
		}
		return schema.FormatTime(*v, dateFormat)
	}
	return value
}

// RelationsToArray serializable cached relations
func (m *Model) RelationsToArray() (map[string]interface{}, error) {
	relations, err := m.relationsToArrayable()
	if err != nil {
		return nil, err
	}
	return relations.toMap(), nil
}

func (m *Model) relationsToArrayable() (*arrayable, error) {
	result := newArrayable()
	for _, name := range m.arrayableItems(m.relationOrder) {
		key := name
		if m.def.snakeAttributes {
			key = schema.ToSnake(name)
		}

		switch value := m.relations[name].(type) {
		case *Model:
			if value == nil {
				result.set(key, nil)
				continue
			}
			item, err := value.toArrayable()
			if err != nil {
				return nil, err
			}
			result.set(key, item)
		case Collection:
			items, err := value.toArrayables()
			if err != nil {
				return nil, err
			}
			result.set(key, items)
		default:
			result.set(key, value)
		}
	}
	return result, nil
}

func (m *Model) toArrayable() (*arrayable, error) {
	attrs, err := m.attributesToArrayable(false)
	if err != nil {
		return nil, err
	}

	relations, err := m.relationsToArrayable()
	if err != nil {
		return nil, err
	}
	attrs.merge(relations)

	appends, err := m.appendsToArrayable()
	if err != nil {
		return nil, err
	}
	attrs.merge(appends)
	return attrs, nil
}

// ToArray attributes, then cached relations, then appends, as plain maps and slices
func (m *Model) ToArray() (map[string]interface{}, error) {
	result, err := m.toArrayable()
	if err != nil {
		return nil, err
	}
	return result.toMap(), nil
}

// MarshalJSON renders ToArray keeping attribute order
func (m *Model) MarshalJSON() ([]byte, error) {
	result, err := m.toArrayable()
	if err != nil {
		return nil, err
	}
	return result.MarshalJSON()
}

// ToJSON JSON form of the model
func (m *Model) ToJSON() (string, error) {
	data, err := m.MarshalJSON()
	return string(data), err
}

func (c Collection) toArrayables() ([]*arrayable, error) {
	items := make([]*arrayable, 0, len(c))
	for _, m := range c {
		item, err := m.toArrayable()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ToArray every model as ToArray
func (c Collection) ToArray() ([]map[string]interface{}, error) {
	items, err := c.toArrayables()
	if err != nil {
		return nil, err
	}
	return plain(items).([]map[string]interface{}), nil
}
