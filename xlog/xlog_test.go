package xlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xskl/lib/infra"
)

type testMemOutWriter struct {
	lock sync.Mutex
	data bytes.Buffer
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.Write(p)
}

func (w *testMemOutWriter) Sync() error { return nil }

func (w *testMemOutWriter) lines() []string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return strings.Split(strings.TrimSpace(w.data.String()), "\n")
}

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())
}

func TestGetLogLevelOrDefault(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault(""))
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault("  "))
	require.Equal(t, zapcore.InfoLevel, getLogLevelOrDefault("info"))
	require.Equal(t, zapcore.WarnLevel, getLogLevelOrDefault("WARN"))
	require.Equal(t, zapcore.ErrorLevel, getLogLevelOrDefault("Error"))
	require.Equal(t, zapcore.DebugLevel, getLogLevelOrDefault("verbose"))
}

func TestXLogger_EnvLevel(t *testing.T) {
	t.Setenv(logLevelEnvKey, "WARN")
	w := &testMemOutWriter{}
	logger := NewXLogger(WithXLoggerWriter(w))
	require.Equal(t, "warn", logger.Level())

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())
	lines := w.lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"msg":"kept"`)
}

func TestXLogger_JSONOutput(t *testing.T) {
	w := &testMemOutWriter{}
	logger := NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(w),
		WithXLoggerTimeEncoder(nil),
		WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
	)
	logger.Debug("debug msg", zap.Int("n", 1))
	logger.Info("info msg")
	logger.Error(errors.New("boom"), "error msg")
	logger.Logf(zapcore.WarnLevel, "formatted %d", 7)
	require.NoError(t, logger.Sync())

	lines := w.lines()
	require.Len(t, lines, 4)
	entries := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	require.Equal(t, "DEBUG", entries[0]["lvl"])
	require.Equal(t, float64(1), entries[0]["n"])
	require.Equal(t, "info msg", entries[1]["msg"])
	require.Equal(t, "boom", entries[2]["error"])
	require.Equal(t, "formatted 7", entries[3]["msg"])
	require.Contains(t, entries[0]["callAt"], "xlog_test.go")
}

func TestXLogger_ErrorStack(t *testing.T) {
	w := &testMemOutWriter{}
	logger := NewXLogger(WithXLoggerLevel(LogLevelInfo), WithXLoggerWriter(w))

	logger.ErrorStack(infra.NewErrorStack("stacked"), "error stack")
	logger.ErrorStackf(errors.New("plain"), "error stack %s", "formatted")
	require.NoError(t, logger.Sync())

	lines := w.lines()
	require.Len(t, lines, 2)
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "stacked", entry["error"])
	stack, ok := entry["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, stack)

	entry = map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	require.Equal(t, "plain", entry["error"])
	require.Equal(t, "error stack formatted", entry["msg"])
}

func TestXLogger_NamedAndLevelChange(t *testing.T) {
	w := &testMemOutWriter{}
	logger := NewXLogger(WithXLoggerLevel(LogLevelDebug), WithXLoggerEncoder(PlainText), WithXLoggerWriter(w))
	child := logger.Named("x-skl")

	logger.IncreaseLogLevel(zapcore.ErrorLevel)
	child.Debug("dropped by parent level")
	require.Equal(t, "error", child.Level())

	logger.IncreaseLogLevel(zapcore.DebugLevel)
	child.Debug("kept")
	require.NoError(t, child.Sync())
	lines := w.lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "x-skl")
	require.Contains(t, lines[0], "kept")
}

func TestXLoggerOptions_Invalid(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(nil))
	})
}
