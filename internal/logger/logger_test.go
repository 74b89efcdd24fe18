package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := L()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })
	return logs
}

func TestLevels(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Info("hello %s", "world")
	Warning("careful")
	Error("boom %d", 42)
	Debug("hidden")
	Success("done")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "hello world", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom 42", entries[2].Message)
	assert.Equal(t, "✓ done", entries[3].Message)
}

func TestRequestLevelByStatus(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Request("GET", "/rankings", 200, 3*time.Millisecond)
	Request("POST", "/coordinates", 404, time.Millisecond)
	Request("POST", "/coordinates", 500, 2*time.Second)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "3ms", entries[0].ContextMap()["duration"])
	assert.Equal(t, "2.00s", entries[2].ContextMap()["duration"])
}

func TestInitRejectsBadLevel(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev) })

	require.Error(t, Init("loud"))
	require.NoError(t, Init("debug"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500µs", formatDuration(500*time.Microsecond))
	assert.Equal(t, "12ms", formatDuration(12*time.Millisecond))
}
