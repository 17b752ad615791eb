package dialect

import (
	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/schema"
)

// SQLite sqlite3
type SQLite struct{}

func (SQLite) Name() string {
	return "sqlite"
}

func (SQLite) BindVar(i int) string {
	return "?"
}

func (SQLite) QuoteIdentifier(name string) string {
	return quoteSegments(name, '"')
}

func (SQLite) SupportLastInsertId() bool {
	return true
}

func (SQLite) ReturningStr(key string) string {
	return ""
}

func (SQLite) DateFormat() string {
	return schema.DefaultDateFormat
}

func (SQLite) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, nil, `"`, vars...)
}
