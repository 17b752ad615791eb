package logger

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type bufferWriter struct {
	bytes.Buffer
}

func (w *bufferWriter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&w.Buffer, format, args...)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Silent, ParseLevel("silent", Warn))
	assert.Equal(t, Error, ParseLevel("ERROR", Warn))
	assert.Equal(t, Warn, ParseLevel("warning", Info))
	assert.Equal(t, Info, ParseLevel(" info ", Warn))
	assert.Equal(t, Warn, ParseLevel("bogus", Warn))
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "info")
	assert.Equal(t, Info, LevelFromEnv(Warn))

	t.Setenv(EnvLogLevel, "")
	assert.Equal(t, Error, LevelFromEnv(Error))
}

func TestDefaultLogger(t *testing.T) {
	ctx := context.Background()
	w := &bufferWriter{}
	l := New(w, Config{LogLevel: Warn, SlowThreshold: 10 * time.Millisecond})

	l.Info(ctx, "skipped")
	assert.Empty(t, w.String())

	l.Warn(ctx, "touch %s", "owners")
	assert.Contains(t, w.String(), "[warn] touch owners")
	assert.Contains(t, w.String(), "logger_test.go")

	w.Reset()
	l.Trace(ctx, time.Now(), func() (string, int64) { return "insert model_stubs", 1 }, nil)
	assert.Empty(t, w.String())

	l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "insert model_stubs", 1 }, nil)
	assert.Contains(t, w.String(), "SLOW OPERATION")

	w.Reset()
	l.Trace(ctx, time.Now(), func() (string, int64) { return "update model_stubs", -1 }, assert.AnError)
	assert.Contains(t, w.String(), assert.AnError.Error())
	assert.Contains(t, w.String(), "[rows:-]")

	w.Reset()
	l.LogMode(Info).Trace(ctx, time.Now(), func() (string, int64) { return "delete model_stubs", 2 }, nil)
	assert.Contains(t, w.String(), "[rows:2] delete model_stubs")

	w.Reset()
	l.LogMode(Silent).Error(ctx, "quiet")
	assert.Empty(t, w.String())
}

func TestTraceRecorder(t *testing.T) {
	recorder := Recorder.New()
	recorder.Trace(context.Background(), time.Now(), func() (string, int64) { return "update model_stubs", 3 }, nil)

	assert.Equal(t, "update model_stubs", recorder.SQL)
	assert.Equal(t, int64(3), recorder.RowsAffected)
	assert.NoError(t, recorder.Err)
}
