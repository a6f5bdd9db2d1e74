package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/driftwoodlabs/momentum/internal/config"
)

// syncBuffer adapts a bytes.Buffer into a zapcore.WriteSyncer guarded by
// a mutex, since zap may write from multiple goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

var _ zapcore.WriteSyncer = (*syncBuffer)(nil)

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInitialize(t *testing.T) {
	t.Run("should emit named console output at the configured level", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &syncBuffer{}
		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "momentum-test",
		}, buf)

		logger := GetLogger()
		logger.Debug("debug message visible")
		logger.Info("info message visible")
		require.NoError(t, logger.Sync())

		out := buf.String()
		assert.Contains(t, out, "debug message visible")
		assert.Contains(t, out, "info message visible")
		assert.Contains(t, out, "momentum-test.")
	})

	t.Run("should suppress entries below the configured level", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &syncBuffer{}
		Initialize(config.LoggerConfig{
			Level:       "warn",
			Format:      "console",
			ServiceName: "momentum-test",
		}, buf)

		logger := GetLogger()
		logger.Info("filtered entry")
		logger.Warn("surviving entry")
		require.NoError(t, logger.Sync())

		out := buf.String()
		assert.NotContains(t, out, "filtered entry")
		assert.Contains(t, out, "surviving entry")
	})

	t.Run("should fall back to info on an unparseable level", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &syncBuffer{}
		Initialize(config.LoggerConfig{
			Level:       "extremely-verbose",
			Format:      "console",
			ServiceName: "momentum-test",
		}, buf)

		logger := GetLogger()
		logger.Debug("below the fallback level")
		logger.Info("at the fallback level")
		require.NoError(t, logger.Sync())

		out := buf.String()
		assert.NotContains(t, out, "below the fallback level")
		assert.Contains(t, out, "at the fallback level")
	})

	t.Run("should produce structured JSON when configured", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &syncBuffer{}
		Initialize(config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "momentum-test",
		}, buf)

		GetLogger().Info("structured entry")
		require.NoError(t, GetLogger().Sync())

		line := strings.TrimSpace(buf.String())
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "JSON output should be one parseable object per line")
		assert.Equal(t, "structured entry", entry["msg"])
		assert.Equal(t, "INFO", entry["level"])
	})

	t.Run("repeated initialization is a no-op", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		first := &syncBuffer{}
		second := &syncBuffer{}
		Initialize(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "momentum-test"}, first)
		Initialize(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "other"}, second)

		GetLogger().Info("routed to the first writer")
		require.NoError(t, GetLogger().Sync())

		assert.Contains(t, first.String(), "routed to the first writer")
		assert.Empty(t, second.String())
	})
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("fallback logger works") })
}
