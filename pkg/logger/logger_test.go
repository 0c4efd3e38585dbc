package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogger(t *testing.T) {
	t.Helper()
	log = zap.NewNop()
	once = sync.Once{}
	t.Cleanup(func() {
		log = zap.NewNop()
		once = sync.Once{}
	})
}

func TestLoggingBeforeInitIsDiscarded(t *testing.T) {
	resetLogger(t)
	require.NotNil(t, GetLogger())
	assert.NotPanics(t, func() {
		Info(context.Background(), "dropped")
		Sync()
	})
}

func TestInitAndContextLogging(t *testing.T) {
	resetLogger(t)
	Init("development")
	require.NotNil(t, GetLogger())

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	require.NotNil(t, WithContext(ctx))

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
}

func TestWithContextNil(t *testing.T) {
	resetLogger(t)
	//nolint:staticcheck
	assert.NotNil(t, WithContext(nil))
}

func TestWithContextAddsRequestID(t *testing.T) {
	resetLogger(t)
	core, logs := observer.New(zap.InfoLevel)
	log = zap.New(core)

	ctx := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	Info(ctx, "with id")
	Info(context.Background(), "without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "typed-req-id", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestInit_Production(t *testing.T) {
	resetLogger(t)
	Init("production")
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, WithContext(context.Background()))
}

func TestInit_PanicWhenLoggerBuildFails(t *testing.T) {
	resetLogger(t)
	origBuild := buildLogger
	t.Cleanup(func() { buildLogger = origBuild })

	buildLogger = func(zap.Config) (*zap.Logger, error) {
		return nil, errors.New("build failed")
	}

	assert.Panics(t, func() { Init("production") })
}
