package activerecord

import (
	"fmt"
	"time"

	"github.com/go-gorm/activerecord/schema"
	"github.com/go-gorm/activerecord/utils"
)

// Casts copy of the declared casts
func (m *Model) Casts() map[string]schema.CastKind {
	casts := make(map[string]schema.CastKind, len(m.def.casts))
	for name, kind := range m.def.casts {
		casts[name] = kind
	}
	return casts
}

func (m *Model) castKind(key string) (schema.CastKind, bool) {
	kind, ok := m.def.casts[key]
	return kind, ok
}

// HasCast reports whether key has a cast, of one of kinds when given
func (m *Model) HasCast(key string, kinds ...schema.CastKind) bool {
	kind, ok := m.castKind(key)
	if !ok || len(kinds) == 0 {
		return ok
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Dates attributes handled as dates besides the date casts
func (m *Model) Dates() []string {
	var dates []string
	if m.timestamps {
		dates = append(dates, m.def.createdAt, m.def.updatedAt)
	}
	return utils.AppendUnique(dates, m.def.dates...)
}

// IsDateAttribute reports whether key is stored as a formatted date
func (m *Model) IsDateAttribute(key string) bool {
	if kind, ok := m.castKind(key); ok && kind.IsDate() {
		return true
	}
	return utils.Contains(m.Dates(), key)
}

// DateFormat storage format of dates: the definition's, else the connection's, else the registry's
func (m *Model) DateFormat() string {
	if m.dateFormat != "" {
		return m.dateFormat
	}

	if m.registry().ConnectionResolver != nil {
		if conn, err := m.Connection(); err == nil {
			if format := conn.DateFormat(); format != "" {
				return format
			}
		}
	}
	return m.registry().DateFormat
}

// SetDateFormat override the storage format of dates for this instance
func (m *Model) SetDateFormat(format string) *Model {
	m.dateFormat = format
	return m
}

func (m *Model) asDateTime(value interface{}) (time.Time, error) {
	return schema.ParseTime(value, m.DateFormat(), m.registry().TimeLocation)
}

// AsDateTime parse value as a date in the registry location
func (m *Model) AsDateTime(value interface{}) (time.Time, error) {
	return m.asDateTime(value)
}

// FromDateTime convert value to its stored date form, nil stays nil
func (m *Model) FromDateTime(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	t, err := m.asDateTime(value)
	if err != nil {
		return nil, err
	}
	return schema.FormatTime(t, m.DateFormat()), nil
}

// castAttribute convert a stored value to its declared kind
func (m *Model) castAttribute(key string, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	kind, ok := m.castKind(key)
	if !ok {
		if utils.Contains(m.Dates(), key) {
			return m.asDateTime(value)
		}
		return value, nil
	}

	switch kind {
	case schema.Int:
		i, err := schema.ToInt(value)
		if err != nil {
			return nil, fmt.Errorf("cast %s to %s: %w", key, kind, err)
		}
		return i, nil
	case schema.Float:
		f, err := schema.ToFloat(value)
		if err != nil {
			return nil, fmt.Errorf("cast %s to %s: %w", key, kind, err)
		}
		return f, nil
	case schema.String:
		return schema.ToString(value), nil
	case schema.Bool:
		return schema.ToBool(value), nil
	case schema.Object, schema.Array, schema.JSON:
		decoded, err := schema.DecodeJSON(kind, value)
		if err != nil {
			return nil, &EncodingError{Attribute: key, Model: m.def.Name, Err: err}
		}
		return decoded, nil
	case schema.Date:
		t, err := m.asDateTime(value)
		if err != nil {
			return nil, err
		}
		return schema.StartOfDay(t), nil
	case schema.DateTime:
		return m.asDateTime(value)
	case schema.Timestamp:
		t, err := m.asDateTime(value)
		if err != nil {
			return nil, err
		}
		return t.Unix(), nil
	case schema.Custom:
		return m.def.casters[key].CastIn(key, value)
	}
	return value, nil
}
