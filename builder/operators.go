package builder

import (
	"fmt"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// Comparison Operators
////////////////////////////////////////////////////////////////////////////////

// Condition query condition
type Condition interface {
	Build(b *Builder)
}

// Expr column compared with a value, nil values compare with IS NULL
type Expr struct {
	Column   Column
	Operator string
	Value    interface{}
}

func (expr Expr) Build(b *Builder) {
	b.WriteQuoted(expr.Column)
	if expr.Value == nil {
		switch expr.Operator {
		case "=":
			b.WriteString(" IS NULL")
			return
		case "!=", "<>":
			b.WriteString(" IS NOT NULL")
			return
		}
	}
	b.WriteString(" " + strings.ToUpper(expr.Operator) + " ")
	b.AddVar(expr.Value)
}

// Eq equal to
type Eq struct {
	Column Column
	Value  interface{}
}

func (eq Eq) Build(b *Builder) {
	Expr{Column: eq.Column, Operator: "=", Value: eq.Value}.Build(b)
}

// Neq not equal to
type Neq struct {
	Column Column
	Value  interface{}
}

func (neq Neq) Build(b *Builder) {
	Expr{Column: neq.Column, Operator: "<>", Value: neq.Value}.Build(b)
}

// Gt greater than
type Gt struct {
	Column Column
	Value  interface{}
}

func (gt Gt) Build(b *Builder) {
	Expr{Column: gt.Column, Operator: ">", Value: gt.Value}.Build(b)
}

// Gte greater than or equal to
type Gte struct {
	Column Column
	Value  interface{}
}

func (gte Gte) Build(b *Builder) {
	Expr{Column: gte.Column, Operator: ">=", Value: gte.Value}.Build(b)
}

// Lt less than
type Lt struct {
	Column Column
	Value  interface{}
}

func (lt Lt) Build(b *Builder) {
	Expr{Column: lt.Column, Operator: "<", Value: lt.Value}.Build(b)
}

// Lte less than or equal to
type Lte struct {
	Column Column
	Value  interface{}
}

func (lte Lte) Build(b *Builder) {
	Expr{Column: lte.Column, Operator: "<=", Value: lte.Value}.Build(b)
}

// Like pattern match
type Like struct {
	Column Column
	Value  interface{}
	Not    bool
}

func (like Like) Build(b *Builder) {
	operator := "LIKE"
	if like.Not {
		operator = "NOT LIKE"
	}
	Expr{Column: like.Column, Operator: operator, Value: like.Value}.Build(b)
}

// In column in values, empty values match nothing
type In struct {
	Column Column
	Values []interface{}
}

func (in In) Build(b *Builder) {
	if len(in.Values) == 0 {
		b.WriteString("0 = 1")
		return
	}

	b.WriteQuoted(in.Column)
	b.WriteString(" IN (")
	for idx, value := range in.Values {
		if idx > 0 {
			b.WriteString(",")
		}
		b.AddVar(value)
	}
	b.WriteString(")")
}

////////////////////////////////////////////////////////////////////////////////
// Logical Operators
////////////////////////////////////////////////////////////////////////////////

// And TRUE if all the conditions is TRUE
type And []Condition

func (and And) Build(b *Builder) {
	for idx, cond := range and {
		if idx > 0 {
			b.WriteString(" AND ")
		}
		cond.Build(b)
	}
}

// NewCondition condition comparing column with value by operator
func NewCondition(column, operator string, value interface{}) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(operator)) {
	case "=", "==":
		return Eq{Column: column, Value: value}, nil
	case "!=", "<>":
		return Neq{Column: column, Value: value}, nil
	case ">":
		return Gt{Column: column, Value: value}, nil
	case ">=":
		return Gte{Column: column, Value: value}, nil
	case "<":
		return Lt{Column: column, Value: value}, nil
	case "<=":
		return Lte{Column: column, Value: value}, nil
	case "like":
		return Like{Column: column, Value: value}, nil
	case "not like":
		return Like{Column: column, Value: value, Not: true}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, operator)
}
