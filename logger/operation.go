package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Operation a model operation carried by the context of a trace
type Operation struct {
	Model string
	Table string
	Name  string // insert, update, delete, increment, select, touch
	Key   interface{}
}

type operationCtxKey struct{}

// WithOperation returns a copy of ctx carrying op
func WithOperation(ctx context.Context, op Operation) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, operationCtxKey{}, op)
}

// OperationFrom the operation carried by ctx
func OperationFrom(ctx context.Context) (Operation, bool) {
	if ctx == nil {
		return Operation{}, false
	}
	op, ok := ctx.Value(operationCtxKey{}).(Operation)
	return op, ok
}

// LogValue renders op as a slog group
func (op Operation) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("model", op.Model),
		slog.String("table", op.Table),
		slog.String("name", op.Name),
	}
	if op.Key != nil {
		attrs = append(attrs, slog.Any("key", op.Key))
	}
	return slog.GroupValue(attrs...)
}

// fields flat key/values of op, for adapters without groups
func (op Operation) fields() map[string]interface{} {
	fields := map[string]interface{}{
		"model":     op.Model,
		"table":     op.Table,
		"operation": op.Name,
	}
	if op.Key != nil {
		fields["key"] = op.Key
	}
	return fields
}

type traceOutcome int

const (
	traceSkipped traceOutcome = iota
	traceFailed
	traceSlow
	traceDone
)

// traceSettings the knobs every adapter shares
type traceSettings struct {
	LogLevel                  LogLevel
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

func (s traceSettings) outcome(elapsed time.Duration, err error) traceOutcome {
	switch {
	case s.LogLevel <= Silent:
		return traceSkipped
	case err != nil && (!s.IgnoreRecordNotFoundError || !errors.Is(err, ErrRecordNotFound)):
		return traceFailed
	case s.SlowThreshold != 0 && elapsed > s.SlowThreshold:
		return traceSlow
	case s.LogLevel >= Info:
		return traceDone
	}
	return traceSkipped
}

// traceMessage "model insert failed", "slow query" and the like
func traceMessage(ctx context.Context, outcome traceOutcome) string {
	subject := "query"
	if op, ok := OperationFrom(ctx); ok {
		subject = "model " + op.Name
	}

	switch outcome {
	case traceFailed:
		return subject + " failed"
	case traceSlow:
		return "slow " + subject
	}
	return subject
}

func milliseconds(elapsed time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(elapsed.Nanoseconds())/1e6)
}
