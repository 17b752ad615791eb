package dialect

import (
	"regexp"
	"strconv"

	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/schema"
)

var numericPlaceholder = regexp.MustCompile(`\$(\d+)`)

// Postgres postgres, generated keys are read back with RETURNING
type Postgres struct{}

func (Postgres) Name() string {
	return "postgres"
}

func (Postgres) BindVar(i int) string {
	return "$" + strconv.Itoa(i)
}

func (Postgres) QuoteIdentifier(name string) string {
	return quoteSegments(name, '"')
}

func (Postgres) SupportLastInsertId() bool {
	return false
}

func (p Postgres) ReturningStr(key string) string {
	return "RETURNING " + p.QuoteIdentifier(key)
}

func (Postgres) DateFormat() string {
	return schema.DefaultDateFormat
}

func (Postgres) Explain(sql string, vars ...interface{}) string {
	return logger.ExplainSQL(sql, numericPlaceholder, `'`, vars...)
}
