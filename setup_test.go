package activerecord_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/go-gorm/activerecord"
	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/utils/tests"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2015, 4, 17, 22, 59, 1, 0, time.UTC)

const fixedNowString = "2015-04-17 22:59:01"

// setup a registry on a fresh fake store, with the shared test models and a frozen clock
func setup(t *testing.T, opts ...activerecord.ConfigOption) (*activerecord.Registry, *tests.Store, *tests.Models) {
	t.Helper()

	store := tests.NewStore()
	r := activerecord.NewRegistry(append([]activerecord.ConfigOption{
		activerecord.WithConnectionResolver(store),
		activerecord.WithLogger(logger.Discard),
		activerecord.WithNowFunc(func() time.Time { return fixedNow }),
	}, opts...)...)

	return r, store, tests.DefineModels(r)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func sortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func mustNew(t *testing.T, def *activerecord.Definition, attrs map[string]interface{}) *activerecord.Model {
	t.Helper()
	m, err := def.New(attrs)
	require.NoError(t, err)
	return m
}

func mustGet(t *testing.T, m *activerecord.Model, key string) interface{} {
	t.Helper()
	v, err := m.Get(key)
	require.NoError(t, err)
	return v
}
