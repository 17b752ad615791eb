package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileWithLineNum(t *testing.T) {
	t.Log("file line with num: ", FileWithLineNum())
}

func TestToStringKey(t *testing.T) {
	cases := []struct {
		values []interface{}
		key    string
	}{
		{[]interface{}{"a"}, "a"},
		{[]interface{}{1, "a"}, "1_a"},
		{[]interface{}{int64(1), uint(2)}, "1_2"},
		{[]interface{}{[]byte("b"), nil}, "b_<nil>"},
	}

	for _, c := range cases {
		assert.Equal(t, c.key, ToStringKey(c.values...))
	}
}

func TestSliceHelpers(t *testing.T) {
	elems := []string{"name", "age", "id"}

	assert.True(t, Contains(elems, "age"))
	assert.False(t, Contains(elems, "foo"))
	assert.Equal(t, []string{"name", "id"}, Without(elems, "age"))
	assert.Equal(t, []string{"age", "id"}, Intersect(elems, []string{"id", "age", "foo"}))
	assert.Equal(t, []string{"name", "age", "id", "foo"}, AppendUnique(elems, "age", "foo"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "12", ToString(int32(12)))
	assert.Equal(t, "7", ToString(uint64(7)))
	assert.Equal(t, "x", ToString("x"))
	assert.Equal(t, "", ToString(1.5))
}
