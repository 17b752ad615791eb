package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 a structured value contains malformed UTF-8
	ErrInvalidUTF8 = errors.New("malformed UTF-8 characters, possibly incorrectly encoded")
	// ErrInvalidCast value can't be coerced to the declared cast
	ErrInvalidCast = errors.New("invalid cast")
	// ErrUnknownCast cast kind isn't recognized
	ErrUnknownCast = errors.New("unknown cast")
)

// CastKind declared semantic type of an attribute
type CastKind string

const (
	Int       CastKind = "int"
	Float     CastKind = "float"
	String    CastKind = "string"
	Bool      CastKind = "bool"
	Object    CastKind = "object"
	Array     CastKind = "array"
	JSON      CastKind = "json"
	Date      CastKind = "date"
	DateTime  CastKind = "datetime"
	Timestamp CastKind = "timestamp"
	Custom    CastKind = "custom"
)

var castAliases = map[string]CastKind{
	"int":           Int,
	"integer":       Int,
	"float":         Float,
	"real":          Float,
	"double":        Float,
	"string":        String,
	"bool":          Bool,
	"boolean":       Bool,
	"object":        Object,
	"array":         Array,
	"collection":    Array,
	"json":          JSON,
	"json-document": JSON,
	"date":          Date,
	"datetime":      DateTime,
	"timestamp":     Timestamp,
	"custom":        Custom,
}

// ParseCastKind normalize a cast name, accepting the usual aliases
func ParseCastKind(name string) (CastKind, error) {
	if kind, ok := castAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCast, name)
}

// IsJSON object, array and json casts are stored as encoded documents
func (k CastKind) IsJSON() bool {
	return k == Object || k == Array || k == JSON
}

// IsDate date, datetime and timestamp casts are stored as formatted dates
func (k CastKind) IsDate() bool {
	return k == Date || k == DateTime || k == Timestamp
}

// Caster custom cast, CastIn converts the stored value when reading and CastOut
// converts an assigned value to its stored form
type Caster interface {
	CastIn(key string, value interface{}) (interface{}, error)
	CastOut(key string, value interface{}) (interface{}, error)
}

// ToInt coerce value to int64
func ToInt(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return ToInt(string(v))
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return int64(f), nil
		}
	case time.Time:
		return v.Unix(), nil
	}
	return 0, fmt.Errorf("%w: can't convert %#v to int", ErrInvalidCast, value)
}

// ToFloat coerce value to float64, the strings Infinity, -Infinity and NaN map to the
// IEEE-754 special values
func ToFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return ToFloat(string(v))
	case string:
		switch v {
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		case "NaN":
			return math.NaN(), nil
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, fmt.Errorf("%w: can't convert %q to float", ErrInvalidCast, v)
		}
		return f, nil
	}

	i, err := ToInt(value)
	if err != nil {
		return 0, fmt.Errorf("%w: can't convert %#v to float", ErrInvalidCast, value)
	}
	return float64(i), nil
}

// ToString coerce value to string
func ToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(DefaultDateFormat)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// ToBool coerce value to bool, zero values, "" and "0" are false
func ToBool(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	case []byte:
		return len(v) > 0 && string(v) != "0"
	case float64:
		return v != 0
	case float32:
		return v != 0
	}

	if i, err := ToInt(value); err == nil {
		return i != 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	}
	return true
}

// IsNumeric reports whether value is a number or a numeric string
func IsNumeric(value interface{}) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil && strings.TrimSpace(v) != "" && !strings.ContainsAny(strings.ToLower(v), "infa")
	}
	return false
}

// NumericString canonical string of a numeric value, "1", 1 and 1.0 render the same
func NumericString(value interface{}) string {
	switch v := value.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return v
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case float32, float64:
		f, _ := ToFloat(v)
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if i, err := ToInt(value); err == nil {
		return strconv.FormatInt(i, 10)
	}
	return fmt.Sprint(value)
}

// EncodeJSON encode value to its stored document form, only json.RawMessage is kept as is
func EncodeJSON(value interface{}) (string, error) {
	if raw, ok := value.(json.RawMessage); ok {
		return string(raw), nil
	}

	if err := validUTF8(reflect.ValueOf(value)); err != nil {
		return "", err
	}

	bytes, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// DecodeJSON decode a stored document, values that are not text are returned unchanged
func DecodeJSON(kind CastKind, value interface{}) (interface{}, error) {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		return value, nil
	}

	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}

	var result interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	if kind == Object {
		if _, ok := result.(map[string]interface{}); !ok && result != nil {
			return nil, fmt.Errorf("%w: %s is not an object", ErrInvalidCast, data)
		}
	}
	return result, nil
}

func validUTF8(rv reflect.Value) error {
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.String:
		if !utf8.ValidString(rv.String()) {
			return ErrInvalidUTF8
		}
	case reflect.Ptr, reflect.Interface:
		if !rv.IsNil() {
			return validUTF8(rv.Elem())
		}
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := validUTF8(rv.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if err := validUTF8(iter.Key()); err != nil {
				return err
			}
			if err := validUTF8(iter.Value()); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).IsExported() {
				if err := validUTF8(rv.Field(i)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
