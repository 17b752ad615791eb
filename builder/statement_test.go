package builder_test

import (
	"testing"

	"github.com/go-gorm/activerecord/builder"
	"github.com/go-gorm/activerecord/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelect(t *testing.T) {
	stmt := &builder.Statement{Table: "users"}
	sql, vars := stmt.BuildSelect(dialect.MySQL{})
	assert.Equal(t, "SELECT * FROM `users`", sql)
	assert.Empty(t, vars)

	stmt.Columns = []string{"id", "users.name"}
	stmt.AddConditions(
		builder.Eq{Column: "age", Value: 20},
		builder.In{Column: "company_id", Values: []interface{}{1, 2}},
		builder.Neq{Column: "deleted_at", Value: nil},
	)
	sql, vars = stmt.BuildSelect(dialect.Postgres{})
	assert.Equal(t, `SELECT "id","users"."name" FROM "users" WHERE "age" = $1 AND "company_id" IN ($2,$3) AND "deleted_at" IS NOT NULL`, sql)
	assert.Equal(t, []interface{}{20, 1, 2}, vars)
}

func TestBuildConditions(t *testing.T) {
	tests := []struct {
		operator string
		value    interface{}
		sql      string
	}{
		{"=", nil, "`name` IS NULL"},
		{"<>", "x", "`name` <> ?"},
		{">", 1, "`name` > ?"},
		{">=", 1, "`name` >= ?"},
		{"<", 1, "`name` < ?"},
		{"<=", 1, "`name` <= ?"},
		{"LIKE", "j%", "`name` LIKE ?"},
		{"not like", "j%", "`name` NOT LIKE ?"},
	}

	for _, tt := range tests {
		cond, err := builder.NewCondition("name", tt.operator, tt.value)
		require.NoError(t, err, tt.operator)

		b := &builder.Builder{Dialect: dialect.MySQL{}}
		cond.Build(b)
		assert.Equal(t, tt.sql, b.SQL.String(), tt.operator)
	}

	_, err := builder.NewCondition("name", "~~", 1)
	assert.ErrorIs(t, err, builder.ErrInvalidOperator)
}

func TestBuildEmptyIn(t *testing.T) {
	stmt := &builder.Statement{Table: "pets"}
	stmt.AddConditions(builder.In{Column: "user_id"})
	sql, vars := stmt.BuildSelect(dialect.SQLite{})
	assert.Equal(t, `SELECT * FROM "pets" WHERE 0 = 1`, sql)
	assert.Empty(t, vars)
}

func TestBuildInsert(t *testing.T) {
	stmt := &builder.Statement{Table: "users"}
	assignments := builder.Assignments(map[string]interface{}{"name": "jinzhu", "age": 20})

	sql, vars := stmt.BuildInsert(dialect.MySQL{}, assignments, "id")
	assert.Equal(t, "INSERT INTO `users` (`age`,`name`) VALUES (?,?)", sql)
	assert.Equal(t, []interface{}{20, "jinzhu"}, vars)

	sql, _ = stmt.BuildInsert(dialect.Postgres{}, assignments, "id")
	assert.Equal(t, `INSERT INTO "users" ("age","name") VALUES ($1,$2) RETURNING "id"`, sql)

	sql, _ = stmt.BuildInsert(dialect.SQLite{}, nil, "")
	assert.Equal(t, `INSERT INTO "users" DEFAULT VALUES`, sql)
	sql, _ = stmt.BuildInsert(dialect.MySQL{}, nil, "")
	assert.Equal(t, "INSERT INTO `users` () VALUES ()", sql)
}

func TestBuildUpdateAndDelete(t *testing.T) {
	stmt := &builder.Statement{Table: "users"}
	stmt.AddConditions(builder.Eq{Column: "id", Value: int64(1)})

	sql, vars := stmt.BuildUpdate(dialect.Postgres{}, builder.Assignments(map[string]interface{}{"updated_at": "now", "name": "tom"}))
	assert.Equal(t, `UPDATE "users" SET "name" = $1,"updated_at" = $2 WHERE "id" = $3`, sql)
	assert.Equal(t, []interface{}{"tom", "now", int64(1)}, vars)

	sql, vars = stmt.BuildIncrement(dialect.Postgres{}, "age", int64(2), builder.Assignments(map[string]interface{}{"updated_at": "now"}))
	assert.Equal(t, `UPDATE "users" SET "age" = "age" + $1,"updated_at" = $2 WHERE "id" = $3`, sql)
	assert.Equal(t, []interface{}{int64(2), "now", int64(1)}, vars)

	sql, vars = stmt.BuildDelete(dialect.MySQL{})
	assert.Equal(t, "DELETE FROM `users` WHERE `id` = ?", sql)
	assert.Equal(t, []interface{}{int64(1)}, vars)
}

func TestStatementClone(t *testing.T) {
	stmt := &builder.Statement{Table: "users", Columns: []string{"id"}}
	clone := stmt.Clone()
	clone.Columns = append(clone.Columns, "name")
	clone.AddConditions(builder.Eq{Column: "id", Value: 1})

	assert.Equal(t, []string{"id"}, stmt.Columns)
	assert.Empty(t, stmt.Conditions)
	assert.Len(t, clone.Conditions, 1)
}
