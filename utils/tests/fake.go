package tests

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gorm/activerecord"
	"github.com/go-gorm/activerecord/schema"
)

// Where recorded where condition, Values is set for where in conditions
type Where struct {
	Column   string
	Operator string
	Value    interface{}
	Values   []interface{}
}

// Call recorded collaborator call
type Call struct {
	Method     string
	Connection string
	Table      string
	Wheres     []Where
	Columns    []string
	Values     map[string]interface{}
	Column     string
	Amount     float64
}

// Store in-memory tables behind fake connections, recording every call
type Store struct {
	mu sync.Mutex

	tables map[string][]map[string]interface{}
	calls  []Call

	// IDs queued ids returned by InsertGetID, auto increment when empty
	IDs []interface{}
	// Err returned by every call when set
	Err error
	// DateFormat date format of the connections
	DateFormat string
}

var _ activerecord.ConnectionResolver = (*Store)(nil)

// NewStore empty store
func NewStore() *Store {
	return &Store{tables: map[string][]map[string]interface{}{}}
}

// Connection implements activerecord.ConnectionResolver
func (s *Store) Connection(name string) (activerecord.Connection, error) {
	return &Connection{name: name, store: s}, nil
}

// Seed append rows to table
func (s *Store) Seed(table string, rows ...map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.tables[table] = append(s.tables[table], copyRow(row))
	}
}

// Rows copy of the rows of table
func (s *Store) Rows(table string) []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]map[string]interface{}, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		rows = append(rows, copyRow(row))
	}
	return rows
}

// Calls recorded calls, of the given methods when any
func (s *Store) Calls(methods ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var calls []Call
	for _, call := range s.calls {
		if len(methods) == 0 || contains(methods, call.Method) {
			calls = append(calls, call)
		}
	}
	return calls
}

// ResetCalls forget recorded calls
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Store) record(call Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return s.Err
}

// Connection fake connection
type Connection struct {
	name  string
	store *Store
}

func (c *Connection) Name() string { return c.name }

func (c *Connection) Table(name string) activerecord.QueryBuilder {
	return &Query{store: c.store, connection: c.name, table: name}
}

func (c *Connection) Grammar() activerecord.Grammar { return grammar{} }

func (c *Connection) Processor() activerecord.Processor { return nil }

func (c *Connection) DateFormat() string { return c.store.DateFormat }

type grammar struct{}

func (grammar) Name() string                       { return "fake" }
func (grammar) QuoteIdentifier(name string) string { return `"` + name + `"` }
func (grammar) DateFormat() string                 { return "" }

// Query fake query builder, conditions are matched on the string form of values
type Query struct {
	store      *Store
	connection string
	table      string
	wheres     []Where
	columns    []string
}

func (q *Query) clone() *Query {
	c := *q
	c.wheres = append([]Where{}, q.wheres...)
	c.columns = append([]string{}, q.columns...)
	return &c
}

func (q *Query) Where(column, operator string, value interface{}) activerecord.QueryBuilder {
	c := q.clone()
	c.wheres = append(c.wheres, Where{Column: column, Operator: operator, Value: value})
	return c
}

func (q *Query) WhereIn(column string, values []interface{}) activerecord.QueryBuilder {
	c := q.clone()
	c.wheres = append(c.wheres, Where{Column: column, Operator: "in", Values: values})
	return c
}

func (q *Query) Select(columns ...string) activerecord.QueryBuilder {
	c := q.clone()
	c.columns = append(c.columns, columns...)
	return c
}

func (q *Query) call(method string) Call {
	return Call{Method: method, Connection: q.connection, Table: q.table, Wheres: q.wheres, Columns: q.columns}
}

func (q *Query) matches(row map[string]interface{}) bool {
	for _, where := range q.wheres {
		actual := fmt.Sprint(row[where.Column])
		switch where.Operator {
		case "in":
			found := false
			for _, v := range where.Values {
				if fmt.Sprint(v) == actual {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "!=", "<>":
			if actual == fmt.Sprint(where.Value) {
				return false
			}
		default:
			if actual != fmt.Sprint(where.Value) {
				return false
			}
		}
	}
	return true
}

func (q *Query) Get(ctx context.Context) ([]map[string]interface{}, error) {
	if err := q.store.record(q.call("get")); err != nil {
		return nil, err
	}

	q.store.mu.Lock()
	defer q.store.mu.Unlock()

	var rows []map[string]interface{}
	for _, row := range q.store.tables[q.table] {
		if !q.matches(row) {
			continue
		}
		if len(q.columns) == 0 {
			rows = append(rows, copyRow(row))
			continue
		}
		selected := map[string]interface{}{}
		for _, column := range q.columns {
			if value, ok := row[column]; ok {
				selected[column] = value
			}
		}
		rows = append(rows, selected)
	}
	return rows, nil
}

func (q *Query) Update(ctx context.Context, changes map[string]interface{}) (int64, error) {
	call := q.call("update")
	call.Values = copyRow(changes)
	if err := q.store.record(call); err != nil {
		return 0, err
	}

	q.store.mu.Lock()
	defer q.store.mu.Unlock()

	var affected int64
	for _, row := range q.store.tables[q.table] {
		if q.matches(row) {
			for column, value := range changes {
				row[column] = value
			}
			affected++
		}
	}
	return affected, nil
}

func (q *Query) Insert(ctx context.Context, values map[string]interface{}) error {
	call := q.call("insert")
	call.Values = copyRow(values)
	if err := q.store.record(call); err != nil {
		return err
	}

	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	q.store.tables[q.table] = append(q.store.tables[q.table], copyRow(values))
	return nil
}

func (q *Query) InsertGetID(ctx context.Context, values map[string]interface{}, key string) (interface{}, error) {
	call := q.call("insertGetId")
	call.Values = copyRow(values)
	call.Column = key
	if err := q.store.record(call); err != nil {
		return nil, err
	}

	q.store.mu.Lock()
	defer q.store.mu.Unlock()

	var id interface{}
	if len(q.store.IDs) > 0 {
		id, q.store.IDs = q.store.IDs[0], q.store.IDs[1:]
	} else {
		var max int64
		for _, row := range q.store.tables[q.table] {
			if i, err := schema.ToInt(row[key]); err == nil && i > max {
				max = i
			}
		}
		id = max + 1
	}

	row := copyRow(values)
	row[key] = id
	q.store.tables[q.table] = append(q.store.tables[q.table], row)
	return id, nil
}

func (q *Query) Delete(ctx context.Context) (int64, error) {
	if err := q.store.record(q.call("delete")); err != nil {
		return 0, err
	}

	q.store.mu.Lock()
	defer q.store.mu.Unlock()

	var (
		kept     []map[string]interface{}
		affected int64
	)
	for _, row := range q.store.tables[q.table] {
		if q.matches(row) {
			affected++
		} else {
			kept = append(kept, row)
		}
	}
	q.store.tables[q.table] = kept
	return affected, nil
}

func (q *Query) Increment(ctx context.Context, column string, amount float64, extra map[string]interface{}) (int64, error) {
	call := q.call("increment")
	call.Column = column
	call.Amount = amount
	call.Values = copyRow(extra)
	if err := q.store.record(call); err != nil {
		return 0, err
	}

	q.store.mu.Lock()
	defer q.store.mu.Unlock()

	var affected int64
	for _, row := range q.store.tables[q.table] {
		if !q.matches(row) {
			continue
		}
		current, _ := schema.ToFloat(row[column])
		row[column] = current + amount
		for k, v := range extra {
			row[k] = v
		}
		affected++
	}
	return affected, nil
}

func copyRow(row map[string]interface{}) map[string]interface{} {
	if row == nil {
		return nil
	}
	c := make(map[string]interface{}, len(row))
	for k, v := range row {
		c[k] = v
	}
	return c
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// SortedColumns sorted keys of values, handy for comparing recorded calls
func SortedColumns(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
