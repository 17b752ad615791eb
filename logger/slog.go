package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gorm/activerecord/utils"
)

type slogLogger struct {
	logger *slog.Logger
	traceSettings
	parameterized bool
}

// NewSlogLogger logger writing through log/slog, model operations are added as an
// "operation" group
func NewSlogLogger(logger *slog.Logger, config Config) Interface {
	return &slogLogger{
		logger: logger,
		traceSettings: traceSettings{
			LogLevel:                  config.LogLevel,
			SlowThreshold:             config.SlowThreshold,
			IgnoreRecordNotFoundError: config.IgnoreRecordNotFoundError,
		},
		parameterized: config.ParameterizedQueries,
	}
}

func (l *slogLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *slogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.log(ctx, slog.LevelInfo, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.log(ctx, slog.LevelWarn, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.log(ctx, slog.LevelError, fmt.Sprintf(msg, data...))
	}
}

func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	outcome := l.outcome(elapsed, err)
	if outcome == traceSkipped {
		return
	}

	text, rows := fc()
	attrs := []slog.Attr{slog.String("elapsed", milliseconds(elapsed))}
	if _, ok := OperationFrom(ctx); !ok {
		attrs = append(attrs, slog.String("sql", text))
	}
	if rows != -1 {
		attrs = append(attrs, slog.Int64("rows", rows))
	}

	level := slog.LevelInfo
	switch outcome {
	case traceFailed:
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", err.Error()))
	case traceSlow:
		level = slog.LevelWarn
		attrs = append(attrs, slog.Duration("slow_threshold", l.SlowThreshold))
	}
	l.log(ctx, level, traceMessage(ctx, outcome), attrs...)
}

// log emits a record whose source is the first frame outside this module
func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, utils.CallerFrame().PC)
	if op, ok := OperationFrom(ctx); ok {
		r.AddAttrs(slog.Any("operation", op))
	}
	r.AddAttrs(attrs...)
	_ = l.logger.Handler().Handle(ctx, r)
}

func (l *slogLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.parameterized {
		return sql, nil
	}
	return sql, params
}
