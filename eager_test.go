package activerecord_test

import (
	"errors"
	"testing"

	"github.com/go-gorm/activerecord"
	"github.com/go-gorm/activerecord/utils/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsersWithPets(store *tests.Store) {
	store.Seed("users",
		map[string]interface{}{"id": int64(1), "name": "jinzhu", "company_id": int64(1)},
		map[string]interface{}{"id": int64(2), "name": "tom", "company_id": int64(1)},
		map[string]interface{}{"id": int64(3), "name": "kate"},
	)
	store.Seed("companies", map[string]interface{}{"id": int64(1), "name": "acme"})
	store.Seed("pets",
		map[string]interface{}{"id": int64(1), "name": "rex", "user_id": int64(1)},
		map[string]interface{}{"id": int64(2), "name": "kit", "user_id": int64(2)},
		map[string]interface{}{"id": int64(3), "name": "max", "user_id": int64(1)},
	)
	store.Seed("toys",
		map[string]interface{}{"id": int64(1), "name": "ball", "owner_type": "Pet", "owner_id": int64(1)},
		map[string]interface{}{"id": int64(2), "name": "bone", "owner_type": "Pet", "owner_id": int64(2)},
	)
}

func TestEagerLoadAvoidsPerModelQueries(t *testing.T) {
	ctx := testContext(t)
	_, store, models := setup(t)
	seedUsersWithPets(store)

	users, err := models.User.Query().With("pets", "company").Get(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	gets := store.Calls("get")
	require.Len(t, gets, 3)
	assert.Equal(t, []string{"users", "companies", "pets"}, []string{gets[0].Table, gets[1].Table, gets[2].Table})
	assert.Equal(t, []tests.Where{{Column: "id", Operator: "in", Values: []interface{}{int64(1)}}}, gets[1].Wheres)
	assert.Equal(t, []tests.Where{{Column: "user_id", Operator: "in", Values: []interface{}{int64(1), int64(2), int64(3)}}}, gets[2].Wheres)

	assert.Len(t, users[0].GetRelation("pets"), 2)
	assert.Len(t, users[1].GetRelation("pets"), 1)
	assert.Equal(t, activerecord.Collection{}, users[2].GetRelation("pets"))

	company := users[0].GetRelation("company").(*activerecord.Model)
	assert.Same(t, company, users[1].GetRelation("company"))
	assert.True(t, users[2].RelationLoaded("company"))
	assert.Nil(t, users[2].GetRelation("company"))

	// cached relations don't query again
	mustGet(t, users[1], "pets")
	assert.Len(t, store.Calls("get"), 3)
}

func TestEagerLoadNested(t *testing.T) {
	ctx := testContext(t)
	_, store, models := setup(t)
	seedUsersWithPets(store)

	builder := models.User.Query().With("pets.toy")
	assert.Contains(t, builder.EagerLoads(), "pets")
	assert.Contains(t, builder.EagerLoads(), "pets.toy")

	users, err := builder.Get(ctx)
	require.NoError(t, err)

	pets := users[0].GetRelation("pets").(activerecord.Collection)
	require.Len(t, pets, 2)
	toy := pets[0].GetRelation("toy").(*activerecord.Model)
	assert.Equal(t, "ball", mustGet(t, toy, "name"))
	assert.True(t, pets[1].RelationLoaded("toy"))
	assert.Nil(t, pets[1].GetRelation("toy"))

	assert.Len(t, store.Calls("get"), 3)
}

func TestEagerLoadMorphTo(t *testing.T) {
	ctx := testContext(t)
	_, store, models := setup(t)
	seedUsersWithPets(store)
	store.Seed("toys", map[string]interface{}{"id": int64(3), "name": "yarn", "owner_type": "User", "owner_id": int64(3)})

	toys, err := models.Toy.Query().With("owner").Get(ctx)
	require.NoError(t, err)
	require.Len(t, toys, 3)

	owners := make([]string, 0, len(toys))
	for _, toy := range toys {
		owner := toy.GetRelation("owner").(*activerecord.Model)
		owners = append(owners, owner.Definition().Name+":"+mustGet(t, owner, "name").(string))
	}
	assert.Equal(t, []string{"Pet:rex", "Pet:kit", "User:kate"}, owners)

	// one query for the toys, one per morph type
	assert.Len(t, store.Calls("get"), 3)
}

func TestEagerLoadConstraints(t *testing.T) {
	ctx := testContext(t)
	_, store, models := setup(t)
	seedUsersWithPets(store)

	users, err := models.User.Query().Where("id", "=", 1).With(map[string]func(activerecord.QueryBuilder) activerecord.QueryBuilder{
		"pets": func(q activerecord.QueryBuilder) activerecord.QueryBuilder {
			return q.Where("name", "=", "max")
		},
	}).Get(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	pets := users[0].GetRelation("pets").(activerecord.Collection)
	require.Len(t, pets, 1)
	assert.Equal(t, "max", mustGet(t, pets[0], "name"))

	store.ResetCalls()
	users, err = models.User.Query().WhereIn("id", []interface{}{1, 2}).With("pets:id,user_id").Get(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	gets := store.Calls("get")
	require.Len(t, gets, 2)
	assert.Equal(t, []string{"id", "user_id"}, gets[1].Columns)
	pet := users[0].GetRelation("pets").(activerecord.Collection)[0]
	assert.Equal(t, []string{"id", "user_id"}, pet.AttributeNames())
}

func TestEagerLoadWithout(t *testing.T) {
	_, _, models := setup(t)
	builder := models.User.Query().With([]string{"pets", "account"}).Without("pets")
	assert.Len(t, builder.EagerLoads(), 1)
	assert.Contains(t, builder.EagerLoads(), "account")

	assert.Panics(t, func() { models.User.Query().With(42) })
}

func TestEagerLoadUnknownRelation(t *testing.T) {
	ctx := testContext(t)
	_, store, models := setup(t)
	seedUsersWithPets(store)

	_, err := models.User.Query().With("friends").Get(ctx)
	assert.ErrorIs(t, err, activerecord.ErrUnknownRelation)
}

func TestFirstAndFind(t *testing.T) {
	ctx := testContext(t)
	_, store, models := setup(t)
	seedUsersWithPets(store)

	user, err := models.User.Query().Find(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "tom", mustGet(t, user, "name"))
	assert.True(t, user.Exists())
	assert.Equal(t, ctx, user.Context())

	_, err = activerecord.Query(models.User).Find(ctx, 42)
	assert.True(t, errors.Is(err, activerecord.ErrRecordNotFound))

	store.Err = assert.AnError
	_, err = models.User.Query().First(ctx)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestQueryScopes(t *testing.T) {
	ctx := testContext(t)
	r, store, _ := setup(t)
	seedUsersWithPets(store)

	def := r.Define("Member",
		activerecord.WithTable("users"),
		activerecord.WithScope("employed", func(b *activerecord.Builder, _ ...interface{}) *activerecord.Builder {
			return b.Where("company_id", "=", 1)
		}),
		activerecord.WithScope("named", func(b *activerecord.Builder, args ...interface{}) *activerecord.Builder {
			return b.Where("name", "=", args[0])
		}),
	)
	assert.True(t, def.HasScope("named"))
	assert.False(t, def.HasScope("missing"))

	members, err := def.Query().Scopes("employed").Scope("named", "tom").Get(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "tom", mustGet(t, members[0], "name"))
	assert.Equal(t, []tests.Where{
		{Column: "company_id", Operator: "=", Value: 1},
		{Column: "name", Operator: "=", Value: "tom"},
	}, store.Calls("get")[0].Wheres)

	store.ResetCalls()
	_, err = def.Query().Scope("missing").Where("id", "=", 1).Get(ctx)
	assert.ErrorIs(t, err, activerecord.ErrUnknownScope)
	assert.Empty(t, store.Calls())
}
