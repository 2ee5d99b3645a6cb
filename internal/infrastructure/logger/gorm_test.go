package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObserved(level gormlogger.LogLevel, slow time.Duration) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, slow), logs
}

func sqlFn() (string, int64) { return "SELECT 1", 1 }

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl, _ := newObserved(gormlogger.Info, 0)
	n := gl.LogMode(gormlogger.Error)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	ng, ok := n.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, ng.logLevel)
}

func TestGormLogger_TraceError(t *testing.T) {
	gl, logs := newObserved(gormlogger.Warn, 0)
	gl.Trace(context.Background(), time.Now(), sqlFn, errors.New("deadlock"))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, e.Level)
	assert.Equal(t, "SELECT 1", e.ContextMap()["sql"])
}

func TestGormLogger_TraceIgnoresNotFound(t *testing.T) {
	gl, logs := newObserved(gormlogger.Warn, 0)
	gl.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())
}

func TestGormLogger_TraceSlow(t *testing.T) {
	gl, logs := newObserved(gormlogger.Warn, time.Millisecond)
	ctx := WithRequestID(context.Background(), zap.NewNop(), "req-1")
	gl.Trace(ctx, time.Now().Add(-time.Second), sqlFn, nil)

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	assert.Equal(t, "req-1", e.ContextMap()["request_id"])
}

func TestGormLogger_Silent(t *testing.T) {
	gl, logs := newObserved(gormlogger.Silent, time.Millisecond)
	gl.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, errors.New("x"))
	gl.Info(context.Background(), "hi %s", "there")
	assert.Equal(t, 0, logs.Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
}
