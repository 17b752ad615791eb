package logger

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedZap(buf *bytes.Buffer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(buf),
		zapcore.InfoLevel,
	)
	return zap.New(core)
}

func TestNewZapLogger(t *testing.T) {
	var buf bytes.Buffer

	zapAdapter := NewZapLogger(newBufferedZap(&buf), Config{
		LogLevel:      Info,
		SlowThreshold: 100 * time.Millisecond,
	})

	require.NotNil(t, zapAdapter)
	assert.Equal(t, Info, zapAdapter.(*ZapLogger).LogLevel)
	assert.Equal(t, 100*time.Millisecond, zapAdapter.(*ZapLogger).SlowThreshold)
}

func TestZapLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(newBufferedZap(&buf), Config{LogLevel: Info}).(*ZapLogger)

	logger.With(zap.String("registry", "default")).Info(context.Background(), "booted %s", "ModelStub")
	assert.Contains(t, buf.String(), `"registry":"default"`)
	assert.Contains(t, buf.String(), "booted ModelStub")
}

func TestZapLogger_LogMode(t *testing.T) {
	logger := NewZapLogger(zap.NewNop(), Config{LogLevel: Error})

	infoLogger := logger.LogMode(Info)
	assert.Equal(t, Info, infoLogger.(*ZapLogger).LogLevel)
	assert.Equal(t, Error, logger.(*ZapLogger).LogLevel)
}

func TestZapLogger_LogLevels(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := NewZapLogger(newBufferedZap(&buf), Config{LogLevel: Info})

	logger.Info(ctx, "saving %s", "model_stubs")
	assert.Contains(t, buf.String(), "saving model_stubs")

	buf.Reset()
	logger.LogMode(Error).Warn(ctx, "dropped")
	assert.Empty(t, buf.String())

	logger.LogMode(Error).Error(ctx, "failed %d", 3)
	assert.Contains(t, buf.String(), "failed 3")
}

func TestZapLogger_Trace(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := NewZapLogger(newBufferedZap(&buf), Config{
		LogLevel:      Info,
		SlowThreshold: 100 * time.Millisecond,
	})

	t.Run("Normal trace", func(t *testing.T) {
		buf.Reset()
		logger.Trace(ctx, time.Now(), func() (string, int64) {
			return "update model_stubs", 5
		}, nil)

		output := buf.String()
		assert.Contains(t, output, `"sql":"update model_stubs"`)
		assert.Contains(t, output, `"rows":5`)
		assert.Contains(t, output, "elapsed")
	})

	t.Run("Slow operation", func(t *testing.T) {
		buf.Reset()
		logger.Trace(ctx, time.Now().Add(-150*time.Millisecond), func() (string, int64) {
			return "insert model_stubs", 1
		}, nil)

		output := buf.String()
		assert.Contains(t, output, `"msg":"slow query"`)
		assert.Contains(t, output, "slow_threshold")
	})

	t.Run("Error trace", func(t *testing.T) {
		buf.Reset()
		logger.Trace(ctx, time.Now(), func() (string, int64) {
			return "delete model_stubs", 0
		}, assert.AnError)

		output := buf.String()
		assert.Contains(t, output, "delete model_stubs")
		assert.Contains(t, output, "error")
	})

	t.Run("Model operation", func(t *testing.T) {
		buf.Reset()
		opCtx := WithOperation(ctx, Operation{Model: "ModelStub", Table: "model_stubs", Name: "insert", Key: int64(3)})
		logger.Trace(opCtx, time.Now(), func() (string, int64) {
			return "insert model_stubs", 1
		}, nil)

		output := buf.String()
		assert.Contains(t, output, `"msg":"model insert"`)
		assert.Contains(t, output, `"model":"ModelStub"`)
		assert.Contains(t, output, `"table":"model_stubs"`)
		assert.Contains(t, output, `"operation":"insert"`)
		assert.Contains(t, output, `"key":3`)
		assert.NotContains(t, output, `"sql"`)
	})

	t.Run("Record not found error with ignore", func(t *testing.T) {
		buf.Reset()
		logger := logger.LogMode(Error)
		logger.(*ZapLogger).IgnoreRecordNotFoundError = true

		logger.Trace(ctx, time.Now(), func() (string, int64) {
			return "select model_stubs", 0
		}, ErrRecordNotFound)

		assert.Empty(t, buf.String())
	})
}

func TestZapLogger_ParamsFilter(t *testing.T) {
	logger := &ZapLogger{Logger: zap.NewNop(), Parameterized: true}
	sql, params := logger.ParamsFilter(context.Background(), "select ?", 1)
	assert.Equal(t, "select ?", sql)
	assert.Nil(t, params)

	logger.Parameterized = false
	_, params = logger.ParamsFilter(context.Background(), "select ?", 1)
	assert.Equal(t, []interface{}{1}, params)
}

func TestZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DPanicLevel, ZapLevel(Silent))
	assert.Equal(t, zapcore.ErrorLevel, ZapLevel(Error))
	assert.Equal(t, zapcore.WarnLevel, ZapLevel(Warn))
	assert.Equal(t, zapcore.InfoLevel, ZapLevel(Info))
}
