package logger

import (
	"context"
	"os"
	"time"

	"github.com/go-gorm/activerecord/utils"
	"github.com/rs/zerolog"
)

// ZerologLogger implements Interface using zerolog
type ZerologLogger struct {
	Logger                    zerolog.Logger
	LogLevel                  LogLevel
	SlowThreshold             time.Duration
	Parameterized             bool
	IgnoreRecordNotFoundError bool
}

// NewZerologLogger creates a new logger using zerolog
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{
		Logger:                    logger,
		LogLevel:                  config.LogLevel,
		SlowThreshold:             config.SlowThreshold,
		Parameterized:             config.ParameterizedQueries,
		IgnoreRecordNotFoundError: config.IgnoreRecordNotFoundError,
	}
}

// NewConsoleZerologLogger zerolog console writer on stdout at the mapped level
func NewConsoleZerologLogger(config Config) Interface {
	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stdout
		w.TimeFormat = time.RFC3339
	})

	logger := zerolog.New(consoleWriter).
		Level(ZerologLevel(config.LogLevel)).
		With().
		Timestamp().
		Logger()

	return NewZerologLogger(logger, config)
}

// LogMode sets the log level
func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *ZerologLogger) event(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	e = e.Str("file", utils.FileWithLineNum())
	if ctx != nil {
		e = e.Ctx(ctx)
	}
	return e
}

// Info logs info messages
func (l *ZerologLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.event(ctx, l.Logger.Info()).Msgf(msg, data...)
	}
}

// Warn logs warning messages
func (l *ZerologLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.event(ctx, l.Logger.Warn()).Msgf(msg, data...)
	}
}

// Error logs error messages
func (l *ZerologLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.event(ctx, l.Logger.Error()).Msgf(msg, data...)
	}
}

// Trace logs an executed query, or a model operation with its model, table and key
func (l *ZerologLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	settings := traceSettings{LogLevel: l.LogLevel, SlowThreshold: l.SlowThreshold, IgnoreRecordNotFoundError: l.IgnoreRecordNotFoundError}

	var event *zerolog.Event
	outcome := settings.outcome(elapsed, err)
	switch outcome {
	case traceFailed:
		event = l.Logger.Error().Err(err)
	case traceSlow:
		event = l.Logger.Warn().Str("slow_threshold", l.SlowThreshold.String())
	case traceDone:
		event = l.Logger.Info()
	default:
		return
	}

	sql, rows := fc()
	event = l.event(ctx, event).Str("elapsed", milliseconds(elapsed))
	if op, ok := OperationFrom(ctx); ok {
		event = event.Fields(op.fields())
	} else {
		event = event.Str("sql", sql)
	}

	if rows != -1 {
		event = event.Int64("rows", rows)
	}

	event.Msg(traceMessage(ctx, outcome))
}

// ParamsFilter filters bound values
func (l *ZerologLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.Parameterized {
		return sql, nil
	}
	return sql, params
}

// ZerologLevel converts LogLevel to zerolog.Level
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
