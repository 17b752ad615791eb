package activerecord

import (
	"context"
)

// QueryBuilder query collaborator, every persistence call goes through it
type QueryBuilder interface {
	Where(column string, operator string, value interface{}) QueryBuilder
	WhereIn(column string, values []interface{}) QueryBuilder
	Select(columns ...string) QueryBuilder
	Get(ctx context.Context) ([]map[string]interface{}, error)
	Update(ctx context.Context, changes map[string]interface{}) (int64, error)
	Insert(ctx context.Context, values map[string]interface{}) error
	InsertGetID(ctx context.Context, values map[string]interface{}, key string) (interface{}, error)
	Delete(ctx context.Context) (int64, error)
	Increment(ctx context.Context, column string, amount float64, extra map[string]interface{}) (int64, error)
}

// Grammar query grammar of a connection
type Grammar interface {
	Name() string
	QuoteIdentifier(name string) string
	DateFormat() string
}

// Processor post processor of a connection
type Processor interface {
	ProcessSelect(rows []map[string]interface{}) []map[string]interface{}
	ProcessInsertGetID(id interface{}) interface{}
}

// Connection named connection
type Connection interface {
	Name() string
	Table(name string) QueryBuilder
	Grammar() Grammar
	Processor() Processor
	DateFormat() string
}

// ConnectionResolver resolves connections by name, an empty name is the default connection
type ConnectionResolver interface {
	Connection(name string) (Connection, error)
}
