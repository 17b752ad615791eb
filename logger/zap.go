package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gorm/activerecord/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger writes through zap. Model operations are logged with model, table, operation
// and key fields, other traces with the sql field.
type ZapLogger struct {
	Logger                    *zap.Logger
	LogLevel                  LogLevel
	SlowThreshold             time.Duration
	Parameterized             bool
	IgnoreRecordNotFoundError bool
}

func NewZapLogger(logger *zap.Logger, config Config) Interface {
	return &ZapLogger{
		Logger:                    logger,
		LogLevel:                  config.LogLevel,
		SlowThreshold:             config.SlowThreshold,
		Parameterized:             config.ParameterizedQueries,
		IgnoreRecordNotFoundError: config.IgnoreRecordNotFoundError,
	}
}

// NewProductionZapLogger zap production logger at the mapped level
func NewProductionZapLogger(config Config) (Interface, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(ZapLevel(config.LogLevel))

	logger, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return NewZapLogger(logger, config), nil
}

func (l *ZapLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// With child logger adding fields to every entry, e.g. the registry a model belongs to
func (l *ZapLogger) With(fields ...zap.Field) *ZapLogger {
	newLogger := *l
	newLogger.Logger = l.Logger.With(fields...)
	return &newLogger
}

func (l *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Logger.Info(fmt.Sprintf(msg, data...), l.contextFields(ctx)...)
	}
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Logger.Warn(fmt.Sprintf(msg, data...), l.contextFields(ctx)...)
	}
}

func (l *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Logger.Error(fmt.Sprintf(msg, data...), l.contextFields(ctx)...)
	}
}

func (l *ZapLogger) contextFields(ctx context.Context) []zap.Field {
	fields := []zap.Field{zap.String("caller", utils.FileWithLineNum())}
	if op, ok := OperationFrom(ctx); ok {
		fields = append(fields, zap.String("model", op.Model), zap.String("table", op.Table), zap.String("operation", op.Name))
		if op.Key != nil {
			fields = append(fields, zap.Any("key", op.Key))
		}
	}
	return fields
}

func (l *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	settings := traceSettings{LogLevel: l.LogLevel, SlowThreshold: l.SlowThreshold, IgnoreRecordNotFoundError: l.IgnoreRecordNotFoundError}
	outcome := settings.outcome(elapsed, err)
	if outcome == traceSkipped {
		return
	}

	text, rows := fc()
	fields := append(l.contextFields(ctx), zap.String("elapsed", milliseconds(elapsed)))
	if _, ok := OperationFrom(ctx); !ok {
		fields = append(fields, zap.String("sql", text))
	}
	if rows != -1 {
		fields = append(fields, zap.Int64("rows", rows))
	}

	msg := traceMessage(ctx, outcome)
	switch outcome {
	case traceFailed:
		l.Logger.Error(msg, append(fields, zap.Error(err))...)
	case traceSlow:
		l.Logger.Warn(msg, append(fields, zap.Duration("slow_threshold", l.SlowThreshold))...)
	default:
		l.Logger.Info(msg, fields...)
	}
}

func (l *ZapLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.Parameterized {
		return sql, nil
	}
	return sql, params
}

// ZapLevel lowest zap level that still shows level
func ZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case Silent:
		return zapcore.DPanicLevel
	case Error:
		return zapcore.ErrorLevel
	case Warn:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
