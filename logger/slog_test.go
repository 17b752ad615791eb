package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSlogLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{AddSource: true})
	logger := NewSlogLogger(slog.New(handler), Config{LogLevel: Info})

	logger.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "update model_stubs", 0
	}, nil)

	if strings.Contains(buf.String(), "logger/slog.go") {
		t.Error("Found internal slog.go reference in caller frame. Expected only test file references.")
	}

	if !strings.Contains(buf.String(), "logger/slog_test.go") {
		t.Error("Missing expected test file reference. 'logger/slog_test.go' should appear in caller frames.")
	}

	if !strings.Contains(buf.String(), "update model_stubs") {
		t.Errorf("Missing traced operation, got %v", buf.String())
	}
}

func TestSlogLoggerOperation(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(buf, nil)), Config{LogLevel: Info})

	ctx := WithOperation(context.Background(), Operation{Model: "ModelStub", Table: "model_stubs", Name: "increment", Key: 5})
	logger.Trace(ctx, time.Now(), func() (string, int64) {
		return "increment model_stubs", 1
	}, nil)

	for _, want := range []string{
		`msg="model increment"`,
		"operation.model=ModelStub",
		"operation.table=model_stubs",
		"operation.name=increment",
		"operation.key=5",
		"rows=1",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in %v", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), "sql=") {
		t.Errorf("model operations should not log sql, got %v", buf.String())
	}

	buf.Reset()
	logger.LogMode(Warn).Info(ctx, "hidden")
	logger.LogMode(Silent).Trace(ctx, time.Now(), func() (string, int64) {
		return "increment model_stubs", 1
	}, errors.New("boom"))
	if buf.Len() != 0 {
		t.Errorf("expected nothing logged, got %v", buf.String())
	}
}
