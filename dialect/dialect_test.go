package dialect_test

import (
	"errors"
	"testing"

	"github.com/go-gorm/activerecord/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByDriverName(t *testing.T) {
	for driver, name := range map[string]string{
		"mysql":    "mysql",
		"postgres": "postgres",
		"pgx":      "postgres",
		"sqlite3":  "sqlite",
		"sqlite":   "sqlite",
	} {
		d, err := dialect.New(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, name, d.Name(), driver)
	}

	_, err := dialect.New("oracle")
	assert.ErrorIs(t, err, dialect.ErrUnsupportedDriver)
	assert.Contains(t, dialect.Drivers(), "pgx")
}

func TestBindVars(t *testing.T) {
	assert.Equal(t, "?", dialect.MySQL{}.BindVar(3))
	assert.Equal(t, "?", dialect.SQLite{}.BindVar(3))
	assert.Equal(t, "$3", dialect.Postgres{}.BindVar(3))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`users`.`id`", dialect.MySQL{}.QuoteIdentifier("users.id"))
	assert.Equal(t, "`we``ird`", dialect.MySQL{}.QuoteIdentifier("we`ird"))
	assert.Equal(t, `"users".*`, dialect.Postgres{}.QuoteIdentifier("users.*"))
	assert.Equal(t, `"na""me"`, dialect.SQLite{}.QuoteIdentifier(`na"me`))
}

func TestInsertedKeys(t *testing.T) {
	assert.True(t, dialect.MySQL{}.SupportLastInsertId())
	assert.True(t, dialect.SQLite{}.SupportLastInsertId())
	assert.Empty(t, dialect.SQLite{}.ReturningStr("id"))

	assert.False(t, dialect.Postgres{}.SupportLastInsertId())
	assert.Equal(t, `RETURNING "id"`, dialect.Postgres{}.ReturningStr("id"))
}

func TestExplain(t *testing.T) {
	assert.Equal(t, "SELECT * FROM `users` WHERE `name` = 'jinzhu' AND `age` = 20",
		dialect.MySQL{}.Explain("SELECT * FROM `users` WHERE `name` = ? AND `age` = ?", "jinzhu", 20))
	assert.Equal(t, `UPDATE "users" SET "name" = 'tom' WHERE "id" = 1`,
		dialect.Postgres{}.Explain(`UPDATE "users" SET "name" = $1 WHERE "id" = $2`, "tom", int64(1)))
	assert.Equal(t, "2006-01-02 15:04:05", dialect.SQLite{}.DateFormat())
}

type custom struct{ dialect.SQLite }

func (custom) Name() string { return "custom" }

func TestRegister(t *testing.T) {
	dialect.Register(custom{}, "custom-driver")
	d, err := dialect.New("custom-driver")
	require.NoError(t, err)
	assert.Equal(t, "custom", d.Name())
	assert.Equal(t, "?", d.BindVar(1))
}

type mysqlError struct {
	Number  uint16
	Message string
}

func (e *mysqlError) Error() string { return e.Message }

type pgError struct {
	Code    string
	Message string
}

func (e *pgError) Error() string { return e.Message }

type sqliteError struct{ code int }

func (e *sqliteError) Error() string { return "constraint failed" }
func (e *sqliteError) Code() int     { return e.code }

func TestTranslate(t *testing.T) {
	duplicated := &mysqlError{Number: 1062, Message: "Duplicate entry"}
	err := dialect.MySQL{}.Translate(duplicated)
	assert.ErrorIs(t, err, dialect.ErrDuplicatedKey)
	assert.ErrorIs(t, err, duplicated)

	other := &mysqlError{Number: 1146, Message: "Table doesn't exist"}
	assert.Same(t, other, dialect.MySQL{}.Translate(other))

	assert.ErrorIs(t, dialect.Postgres{}.Translate(&pgError{Code: "23505"}), dialect.ErrDuplicatedKey)
	assert.NotErrorIs(t, dialect.Postgres{}.Translate(&pgError{Code: "23503"}), dialect.ErrDuplicatedKey)

	assert.ErrorIs(t, dialect.SQLite{}.Translate(&sqliteError{code: 2067}), dialect.ErrDuplicatedKey)
	assert.ErrorIs(t, dialect.SQLite{}.Translate(errors.New("UNIQUE constraint failed: users.email")), dialect.ErrDuplicatedKey)
	assert.NotErrorIs(t, dialect.SQLite{}.Translate(&sqliteError{code: 787}), dialect.ErrDuplicatedKey)

	assert.NoError(t, dialect.MySQL{}.Translate(nil))
	assert.NoError(t, dialect.SQLite{}.Translate(nil))
}
