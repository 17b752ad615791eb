package builder

import (
	"sort"
	"strings"

	"github.com/go-gorm/activerecord/dialect"
)

// Column column type
type Column = string

// Builder accumulates sql and its bound values
type Builder struct {
	Dialect dialect.Dialect
	SQL     strings.Builder
	Vars    []interface{}
}

// WriteString write raw sql
func (b *Builder) WriteString(s string) {
	b.SQL.WriteString(s)
}

// WriteQuoted write quoted identifier
func (b *Builder) WriteQuoted(name string) {
	b.SQL.WriteString(b.Dialect.QuoteIdentifier(name))
}

// AddVar bind value
func (b *Builder) AddVar(value interface{}) {
	b.Vars = append(b.Vars, value)
	b.SQL.WriteString(b.Dialect.BindVar(len(b.Vars)))
}

// Statement statement against one table
type Statement struct {
	Table      string
	Columns    []Column    // Select
	Conditions []Condition // Select, Update, Delete
}

// Assignment assign statement
type Assignment struct {
	Column Column
	Value  interface{}
}

// Assignments assignments of values ordered by column
func Assignments(values map[string]interface{}) []Assignment {
	assignments := make([]Assignment, 0, len(values))
	for column, value := range values {
		assignments = append(assignments, Assignment{Column: column, Value: value})
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Column < assignments[j].Column
	})
	return assignments
}

// Clone clone current statement
func (stmt *Statement) Clone() *Statement {
	newStatement := *stmt
	newStatement.Columns = append([]Column(nil), stmt.Columns...)
	newStatement.Conditions = append([]Condition(nil), stmt.Conditions...)
	return &newStatement
}

// AddConditions add conditions
func (stmt *Statement) AddConditions(conds ...Condition) {
	stmt.Conditions = append(stmt.Conditions, conds...)
}

func (stmt *Statement) buildWhere(b *Builder) {
	if len(stmt.Conditions) > 0 {
		b.WriteString(" WHERE ")
		And(stmt.Conditions).Build(b)
	}
}

// BuildSelect SELECT columns FROM table WHERE conditions
func (stmt *Statement) BuildSelect(d dialect.Dialect) (string, []interface{}) {
	b := &Builder{Dialect: d}
	b.WriteString("SELECT ")
	if len(stmt.Columns) == 0 {
		b.WriteString("*")
	}
	for idx, column := range stmt.Columns {
		if idx > 0 {
			b.WriteString(",")
		}
		b.WriteQuoted(column)
	}
	b.WriteString(" FROM ")
	b.WriteQuoted(stmt.Table)
	stmt.buildWhere(b)
	return b.SQL.String(), b.Vars
}

// BuildInsert INSERT INTO table, returning is the generated key to read back
func (stmt *Statement) BuildInsert(d dialect.Dialect, assignments []Assignment, returning string) (string, []interface{}) {
	b := &Builder{Dialect: d}
	b.WriteString("INSERT INTO ")
	b.WriteQuoted(stmt.Table)

	switch {
	case len(assignments) > 0:
		b.WriteString(" (")
		for idx, assignment := range assignments {
			if idx > 0 {
				b.WriteString(",")
			}
			b.WriteQuoted(assignment.Column)
		}
		b.WriteString(") VALUES (")
		for idx, assignment := range assignments {
			if idx > 0 {
				b.WriteString(",")
			}
			b.AddVar(assignment.Value)
		}
		b.WriteString(")")
	case d.Name() == "mysql":
		b.WriteString(" () VALUES ()")
	default:
		b.WriteString(" DEFAULT VALUES")
	}

	if returning != "" {
		if str := d.ReturningStr(returning); str != "" {
			b.WriteString(" " + str)
		}
	}
	return b.SQL.String(), b.Vars
}

func buildSet(b *Builder, assignments []Assignment) {
	for idx, assignment := range assignments {
		if idx > 0 {
			b.WriteString(",")
		}
		b.WriteQuoted(assignment.Column)
		b.WriteString(" = ")
		b.AddVar(assignment.Value)
	}
}

// BuildUpdate UPDATE table SET assignments WHERE conditions
func (stmt *Statement) BuildUpdate(d dialect.Dialect, assignments []Assignment) (string, []interface{}) {
	b := &Builder{Dialect: d}
	b.WriteString("UPDATE ")
	b.WriteQuoted(stmt.Table)
	b.WriteString(" SET ")
	buildSet(b, assignments)
	stmt.buildWhere(b)
	return b.SQL.String(), b.Vars
}

// BuildIncrement UPDATE table SET column = column + amount, extra assignments follow
func (stmt *Statement) BuildIncrement(d dialect.Dialect, column Column, amount interface{}, extra []Assignment) (string, []interface{}) {
	b := &Builder{Dialect: d}
	b.WriteString("UPDATE ")
	b.WriteQuoted(stmt.Table)
	b.WriteString(" SET ")
	b.WriteQuoted(column)
	b.WriteString(" = ")
	b.WriteQuoted(column)
	b.WriteString(" + ")
	b.AddVar(amount)
	if len(extra) > 0 {
		b.WriteString(",")
		buildSet(b, extra)
	}
	stmt.buildWhere(b)
	return b.SQL.String(), b.Vars
}

// BuildDelete DELETE FROM table WHERE conditions
func (stmt *Statement) BuildDelete(d dialect.Dialect) (string, []interface{}) {
	b := &Builder{Dialect: d}
	b.WriteString("DELETE FROM ")
	b.WriteQuoted(stmt.Table)
	stmt.buildWhere(b)
	return b.SQL.String(), b.Vars
}
