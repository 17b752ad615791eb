package logger

import (
	"context"
	"time"

	"github.com/go-gorm/activerecord/utils"
	"github.com/sirupsen/logrus"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	Logger                    *logrus.Logger
	LogLevel                  LogLevel
	SlowThreshold             time.Duration
	Parameterized             bool
	IgnoreRecordNotFoundError bool
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{
		Logger:                    logger,
		LogLevel:                  config.LogLevel,
		SlowThreshold:             config.SlowThreshold,
		Parameterized:             config.ParameterizedQueries,
		IgnoreRecordNotFoundError: config.IgnoreRecordNotFoundError,
	}
}

// LogMode sets the log level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *LogrusLogger) entry(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("file", utils.FileWithLineNum())
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	return entry
}

// Info logs info messages
func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.entry(ctx).Infof(msg, data...)
	}
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.entry(ctx).Warnf(msg, data...)
	}
}

// Error logs error messages
func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.entry(ctx).Errorf(msg, data...)
	}
}

// Trace logs an executed query, or a model operation with its model, table and key
func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	settings := traceSettings{LogLevel: l.LogLevel, SlowThreshold: l.SlowThreshold, IgnoreRecordNotFoundError: l.IgnoreRecordNotFoundError}
	outcome := settings.outcome(elapsed, err)
	if outcome == traceSkipped {
		return
	}

	sql, rows := fc()
	fields := logrus.Fields{"elapsed": milliseconds(elapsed)}
	if op, ok := OperationFrom(ctx); ok {
		for key, value := range op.fields() {
			fields[key] = value
		}
	} else {
		fields["sql"] = sql
	}
	if rows != -1 {
		fields["rows"] = rows
	}

	entry := l.entry(ctx)
	msg := traceMessage(ctx, outcome)
	switch outcome {
	case traceFailed:
		entry.WithFields(fields).WithError(err).Error(msg)
	case traceSlow:
		fields["slow_threshold"] = l.SlowThreshold.String()
		entry.WithFields(fields).Warn(msg)
	default:
		entry.WithFields(fields).Info(msg)
	}
}

// ParamsFilter filters bound values
func (l *LogrusLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.Parameterized {
		return sql, nil
	}
	return sql, params
}

// LogrusLevel converts LogLevel to logrus.Level
func LogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case Silent:
		return logrus.PanicLevel
	case Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}
