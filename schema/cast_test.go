package schema

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCastKind(t *testing.T) {
	for name, kind := range map[string]CastKind{
		"int": Int, "integer": Int, "real": Float, "double": Float, "boolean": Bool,
		"collection": Array, "json": JSON, "json-document": JSON, " DateTime ": DateTime, "timestamp": Timestamp,
	} {
		got, err := ParseCastKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, kind, got, name)
	}

	_, err := ParseCastKind("money")
	assert.True(t, errors.Is(err, ErrUnknownCast))

	assert.True(t, Array.IsJSON())
	assert.False(t, Int.IsJSON())
	assert.True(t, Timestamp.IsDate())
	assert.False(t, String.IsDate())
}

func TestScalarCoercion(t *testing.T) {
	i, err := ToInt("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), i)

	i, err = ToInt(3.9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	_, err = ToInt("abc")
	assert.True(t, errors.Is(err, ErrInvalidCast))

	f, err := ToFloat("4.5")
	require.NoError(t, err)
	assert.Equal(t, 4.5, f)

	f, err = ToFloat("Infinity")
	require.NoError(t, err)
	assert.True(t, math.IsInf(f, 1))

	f, err = ToFloat("-Infinity")
	require.NoError(t, err)
	assert.True(t, math.IsInf(f, -1))

	f, err = ToFloat("NaN")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))

	_, err = ToFloat("infinity")
	assert.Error(t, err)
	_, err = ToFloat("nan")
	assert.Error(t, err)

	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "1", ToString(true))
	assert.Equal(t, "", ToString(false))
	assert.Equal(t, "7", ToString(7))
}

func TestToBool(t *testing.T) {
	for _, v := range []interface{}{true, 1, "1", "yes", 2.5, []interface{}{1}} {
		assert.True(t, ToBool(v), "%#v", v)
	}
	for _, v := range []interface{}{nil, false, 0, "0", "", 0.0, []interface{}{}} {
		assert.False(t, ToBool(v), "%#v", v)
	}
}

func TestNumericString(t *testing.T) {
	assert.Equal(t, "1", NumericString("1"))
	assert.Equal(t, "1", NumericString(1))
	assert.Equal(t, "1", NumericString(1.0))
	assert.Equal(t, "1.25", NumericString("1.250"))

	assert.True(t, IsNumeric("12"))
	assert.True(t, IsNumeric(12))
	assert.False(t, IsNumeric("foo"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("Infinity"))
}

func TestEncodeDecodeJSON(t *testing.T) {
	encoded, err := EncodeJSON(map[string]interface{}{"foo": "bar"})
	require.NoError(t, err)
	assert.Equal(t, `{"foo":"bar"}`, encoded)

	encoded, err = EncodeJSON(`{"already":"json"}`)
	require.NoError(t, err)
	assert.Equal(t, `"{\"already\":\"json\"}"`, encoded)

	encoded, err = EncodeJSON(json.RawMessage(`{"already":"json"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"already":"json"}`, encoded)

	encoded, err = EncodeJSON("123")
	require.NoError(t, err)
	assert.Equal(t, `"123"`, encoded)

	encoded, err = EncodeJSON("plain")
	require.NoError(t, err)
	assert.Equal(t, `"plain"`, encoded)

	_, err = EncodeJSON(map[string]interface{}{"foo": "b\xc3\x28r"})
	assert.True(t, errors.Is(err, ErrInvalidUTF8))

	_, err = EncodeJSON([]interface{}{"ok", []string{"\xff"}})
	assert.True(t, errors.Is(err, ErrInvalidUTF8))

	decoded, err := DecodeJSON(Array, `[1,2]`)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{float64(1), float64(2)}, decoded)

	decoded, err = DecodeJSON(Object, `{"foo":"bar"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"foo": "bar"}, decoded)

	_, err = DecodeJSON(Object, `[1]`)
	assert.True(t, errors.Is(err, ErrInvalidCast))

	decoded, err = DecodeJSON(JSON, map[string]interface{}{"kept": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"kept": true}, decoded)
}
