package dialect

import (
	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/schema"
)

// MySQL mysql and mariadb
type MySQL struct{}

func (MySQL) Name() string {
	return "mysql"
}

func (MySQL) BindVar(i int) string {
	return "?"
}

func (MySQL) QuoteIdentifier(name string) string {
	return quoteSegments(name, '`')
}

func (MySQL) SupportLastInsertId() bool {
	return true
}

func (MySQL) ReturningStr(key string) string {
	return ""
}

func (MySQL) DateFormat() string {
	return schema.DefaultDateFormat
}

func (MySQL) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, nil, `'`, vars...)
}
