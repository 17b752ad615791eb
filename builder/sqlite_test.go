package builder_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-gorm/activerecord"
	"github.com/go-gorm/activerecord/builder"
	"github.com/go-gorm/activerecord/dialect"
	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/utils/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE companies (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, created_at TEXT, updated_at TEXT)`,
	`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, age INTEGER, birthday TEXT, active INTEGER,
		company_id INTEGER, settings TEXT, password TEXT, created_at TEXT, updated_at TEXT)`,
	`CREATE TABLE pets (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER, name TEXT, created_at TEXT, updated_at TEXT)`,
	`CREATE UNIQUE INDEX idx_companies_name ON companies (name)`,
}

func openSQLite(t *testing.T) (*activerecord.Registry, *tests.Models, *builder.Connection) {
	conn, err := builder.Open("default", "sqlite", ":memory:", builder.WithLogger(logger.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// every pooled connection of :memory: is a new database
	conn.DB().SetMaxOpenConns(1)
	for _, ddl := range sqliteSchema {
		_, err := conn.DB().Exec(ddl)
		require.NoError(t, err)
	}

	now := time.Date(2015, 4, 17, 22, 59, 1, 0, time.UTC)
	r := activerecord.NewRegistry(
		activerecord.WithConnectionResolver(builder.NewResolver(conn)),
		activerecord.WithLogger(logger.Discard),
		activerecord.WithNowFunc(func() time.Time { return now }),
	)
	return r, tests.DefineModels(r), conn
}

func TestSQLiteSaveUpdateDelete(t *testing.T) {
	ctx := context.Background()
	_, models, conn := openSQLite(t)

	user, err := activerecord.Create(ctx, models.User, map[string]interface{}{
		"name":     "jinzhu",
		"age":      20,
		"active":   true,
		"settings": map[string]interface{}{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.Key())
	assert.True(t, user.WasRecentlyCreated())

	found, err := models.User.Query().Find(ctx, int64(1))
	require.NoError(t, err)
	assert.Equal(t, "jinzhu", mustGet(t, found, "name"))
	assert.Equal(t, int64(20), mustGet(t, found, "age"))
	assert.Equal(t, true, mustGet(t, found, "active"))
	assert.Equal(t, map[string]interface{}{"theme": "dark"}, mustGet(t, found, "settings"))
	assert.Equal(t, "2015-04-17 22:59:01", found.GetAttributes()["created_at"])
	assert.False(t, found.IsDirty())

	require.NoError(t, found.Set("name", "tom"))
	saved, err := found.Save(ctx)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, found.WasChanged("name"))

	rows, err := conn.Table("users").Select("name").Where("id", "=", int64(1)).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"name": "tom"}}, rows)

	affected, err := found.Increment(ctx, "age", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	rows, err = conn.Table("users").Select("age").Where("id", "=", int64(1)).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"age": int64(22)}}, rows)

	deleted, err := found.Delete(ctx)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, found.Exists())

	_, err = models.User.Query().Find(ctx, int64(1))
	assert.ErrorIs(t, err, activerecord.ErrRecordNotFound)
}

func TestSQLiteEagerLoading(t *testing.T) {
	ctx := context.Background()
	_, models, _ := openSQLite(t)

	company, err := activerecord.Create(ctx, models.Company, map[string]interface{}{"name": "acme"})
	require.NoError(t, err)
	user, err := activerecord.Create(ctx, models.User, map[string]interface{}{"name": "jinzhu", "company_id": company.Key()})
	require.NoError(t, err)
	for _, name := range []string{"rex", "kit"} {
		_, err := activerecord.Create(ctx, models.Pet, map[string]interface{}{"name": name, "user_id": user.Key()})
		require.NoError(t, err)
	}

	users, err := models.User.Query().With("pets", "company").Get(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	pets, ok := users[0].GetRelation("pets").(activerecord.Collection)
	require.True(t, ok)
	assert.Len(t, pets, 2)
	assert.ElementsMatch(t, []interface{}{"rex", "kit"}, []interface{}{mustGet(t, pets[0], "name"), mustGet(t, pets[1], "name")})

	owner, ok := users[0].GetRelation("company").(*activerecord.Model)
	require.True(t, ok)
	assert.Equal(t, "acme", mustGet(t, owner, "name"))
}

func TestSQLiteCancelledCreate(t *testing.T) {
	ctx := context.Background()
	_, models, conn := openSQLite(t)
	models.Company.On("creating", func(m *activerecord.Model) bool { return false })

	company, err := models.Company.New(map[string]interface{}{"name": "acme"})
	require.NoError(t, err)
	saved, err := company.Save(ctx)
	require.NoError(t, err)
	assert.False(t, saved)

	rows, err := conn.Table("companies").Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteDuplicatedKey(t *testing.T) {
	ctx := context.Background()
	_, models, _ := openSQLite(t)

	_, err := activerecord.Create(ctx, models.Company, map[string]interface{}{"name": "acme"})
	require.NoError(t, err)

	company, err := models.Company.New(map[string]interface{}{"name": "acme"})
	require.NoError(t, err)
	saved, err := company.Save(ctx)
	assert.ErrorIs(t, err, dialect.ErrDuplicatedKey)
	assert.False(t, saved)
	assert.False(t, company.Exists())
}

func mustGet(t *testing.T, m *activerecord.Model, key string) interface{} {
	t.Helper()
	v, err := m.Get(key)
	require.NoError(t, err)
	return v
}
