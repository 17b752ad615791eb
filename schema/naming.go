package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Namer naming strategy for tables, keys and morph columns
type Namer interface {
	TableName(typeName string) string
	ForeignKey(typeName, key string) string
	JoinTableName(typeName, otherTypeName string) string
	MorphColumns(name string) (typeColumn, idColumn string)
}

// NamingStrategy tables, columns naming strategy
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
}

// TableName convert a type name to its table name
func (ns NamingStrategy) TableName(typeName string) string {
	if ns.SingularTable {
		return ns.TablePrefix + ToSnake(typeName)
	}
	return ns.TablePrefix + inflection.Plural(ToSnake(typeName))
}

// ForeignKey default foreign key of a type, e.g. User + id => user_id
func (ns NamingStrategy) ForeignKey(typeName, key string) string {
	return ToSnake(typeName) + "_" + key
}

// JoinTableName joins the snake names of both types in alphabetical order
func (ns NamingStrategy) JoinTableName(typeName, otherTypeName string) string {
	names := []string{ToSnake(typeName), ToSnake(otherTypeName)}
	sort.Strings(names)
	return ns.TablePrefix + strings.Join(names, "_")
}

// MorphColumns default type and id columns of a polymorphic relation
func (ns NamingStrategy) MorphColumns(name string) (string, string) {
	snake := ToSnake(name)
	return snake + "_type", snake + "_id"
}

var (
	smap sync.Map
	// https://github.com/golang/lint/blob/master/lint.go#L770
	commonInitialisms         = []string{"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SSH", "TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM", "XML", "XSRF", "XSS"}
	commonInitialismsReplacer *strings.Replacer
)

func init() {
	var commonInitialismsForReplacer []string
	for _, initialism := range commonInitialisms {
		commonInitialismsForReplacer = append(commonInitialismsForReplacer, initialism, cases.Title(language.Und).String(initialism))
	}
	commonInitialismsReplacer = strings.NewReplacer(commonInitialismsForReplacer...)
}

// ToSnake convert a Go or camel cased name to snake case, e.g. ModelStub => model_stub
func ToSnake(name string) string {
	if name == "" {
		return ""
	} else if v, ok := smap.Load(name); ok {
		return fmt.Sprint(v)
	}

	var (
		value                          = commonInitialismsReplacer.Replace(name)
		buf                            strings.Builder
		lastCase, nextCase, nextNumber bool // upper case == true
		curCase                        = value[0] <= 'Z' && value[0] >= 'A'
	)

	for i, v := range value[:len(value)-1] {
		nextCase = value[i+1] <= 'Z' && value[i+1] >= 'A'
		nextNumber = value[i+1] >= '0' && value[i+1] <= '9'

		if curCase {
			if lastCase && (nextCase || nextNumber) {
				buf.WriteRune(v + 32)
			} else {
				if i > 0 && value[i-1] != '_' && value[i+1] != '_' {
					buf.WriteByte('_')
				}
				buf.WriteRune(v + 32)
			}
		} else {
			buf.WriteRune(v)
		}

		lastCase = curCase
		curCase = nextCase
	}

	if curCase {
		if !lastCase && len(value) > 1 {
			buf.WriteByte('_')
		}
		buf.WriteByte(value[len(value)-1] + 32)
	} else {
		buf.WriteByte(value[len(value)-1])
	}

	result := buf.String()
	smap.Store(name, result)
	return result
}

// ToStudly convert snake or camel case to studly case, e.g. list_items => ListItems
func ToStudly(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	// a Caser keeps state between calls, so one is built per conversion
	caser := cases.Title(language.Und, cases.NoLower)

	var buf strings.Builder
	for _, part := range parts {
		buf.WriteString(caser.String(part))
	}
	return buf.String()
}

// ToCamel convert snake or studly case to camel case, e.g. list_items => listItems
func ToCamel(name string) string {
	studly := ToStudly(name)
	if studly == "" {
		return ""
	}
	return strings.ToLower(studly[:1]) + studly[1:]
}
