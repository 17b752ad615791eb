package activerecord_test

import (
	"testing"

	"github.com/go-gorm/activerecord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirtyNumericRepresentations(t *testing.T) {
	r, _, _ := setup(t)
	def := r.Define("Stub", activerecord.WithGuarded())
	m := def.NewFromRow(map[string]interface{}{"foo": "1"})

	require.NoError(t, m.Set("foo", 1))
	assert.False(t, m.IsDirty("foo"))
	assert.True(t, m.IsClean())

	require.NoError(t, m.Set("foo", 2))
	assert.True(t, m.IsDirty("foo"))
	assert.True(t, m.IsDirty())
	assert.False(t, m.IsDirty("bar"))
	assert.Equal(t, map[string]interface{}{"foo": 2}, m.GetChanges())
	assert.Equal(t, map[string]interface{}{"foo": 2}, m.GetDirty())
}

func TestDirtyCastAwareEquality(t *testing.T) {
	r, _, _ := setup(t)
	def := defineCastModel(r)
	m := def.NewFromRow(map[string]interface{}{
		"date":     "2017-03-18",
		"datetime": "2017-03-18 10:00:00",
		"bool":     1,
		"int":      "5",
		"object":   `{"a":1,"b":2}`,
		"string":   "x",
	})

	m.SetRawAttribute("date", "2017-03-18 00:00:00")
	m.SetRawAttribute("bool", true)
	m.SetRawAttribute("int", 5.0)
	m.SetRawAttribute("object", `{"b":2,"a":1}`)
	require.NoError(t, m.Set("datetime", "2017-03-18 10:00:00"))

	assert.False(t, m.IsDirty(), "dirty %v", m.GetDirty())

	m.SetRawAttribute("bool", 0)
	m.SetRawAttribute("string", "y")
	assert.Equal(t, []string{"bool", "string"}, sortedKeys(m.GetDirty()))
}

func TestDirtyNilAndNewAttributes(t *testing.T) {
	r, _, _ := setup(t)
	def := r.Define("Stub", activerecord.WithGuarded())
	m := def.NewFromRow(map[string]interface{}{"foo": nil, "bar": "0"})

	require.NoError(t, m.Set("foo", nil))
	assert.False(t, m.IsDirty("foo"))

	require.NoError(t, m.Set("bar", nil))
	assert.True(t, m.IsDirty("bar"))

	require.NoError(t, m.Set("baz", "new"))
	assert.True(t, m.IsDirty("baz"))
}

func TestSyncOriginal(t *testing.T) {
	_, _, models := setup(t)
	m := mustNew(t, models.User, map[string]interface{}{"name": "foo", "age": 20})
	assert.True(t, m.IsDirty("name", "age"))

	m.SyncOriginal()
	assert.False(t, m.IsDirty())
	assert.Equal(t, "foo", m.GetRawOriginal("name"))

	require.NoError(t, m.Set("name", "bar"))
	require.NoError(t, m.Set("age", 21))
	m.SyncOriginalAttribute("age")
	assert.True(t, m.IsDirty("name"))
	assert.False(t, m.IsDirty("age"))
}

func TestWasChangedAfterUpdate(t *testing.T) {
	ctx := testContext(t)
	_, store, models := setup(t)
	store.Seed("users", map[string]interface{}{"id": int64(1), "name": "foo"})

	m := models.User.NewFromRow(map[string]interface{}{"id": int64(1), "name": "foo"})
	assert.False(t, m.WasChanged())

	require.NoError(t, m.Set("name", "bar"))
	saved, err := m.Save(ctx)
	require.NoError(t, err)
	require.True(t, saved)

	assert.True(t, m.WasChanged("name"))
	assert.True(t, m.WasChanged("updated_at"))
	assert.False(t, m.WasChanged("id"))
	assert.Equal(t, map[string]interface{}{"name": "bar", "updated_at": fixedNowString}, m.LastChanges())
	assert.False(t, m.IsDirty())
	assert.Empty(t, m.GetChanges())
}
