package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fivetwenty-io/dvdoc/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value    string
		expected zapcore.Level
	}{
		{"", zapcore.WarnLevel},
		{"debug", zapcore.DebugLevel},
		{"TRACE", zapcore.DebugLevel},
		{" info ", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.WarnLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, logging.ParseLevel(tt.value).Level(), "level %q", tt.value)
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Options{Level: "info", Encoding: "json", Output: &buf})
	logger.Debug("hidden")
	logger.Info("Reading queues", zap.String("solution", "contoso_core"))
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Reading queues", entry["msg"])
	assert.Equal(t, "contoso_core", entry["solution"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Options{Output: &buf})
	logger.Info("hidden at the default level")
	logger.Warn("Result truncated to the first page")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "warn\tResult truncated to the first page")
}

func TestAdapter(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	adapter := logging.NewAdapter(zap.New(core))

	adapter.Debug("HTTP Request", map[string]interface{}{"method": "GET", "attempt": 1})
	adapter.Info("info", nil)
	adapter.Warn("Retrying request", map[string]interface{}{"wait": "2s"})
	adapter.Error("API Response Error", map[string]interface{}{"status_code": 403})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, map[string]interface{}{"method": "GET", "attempt": int64(1)}, entries[0].ContextMap())
	assert.Empty(t, entries[1].Context)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)

	// Fields are emitted in key order.
	assert.Equal(t, "attempt", entries[0].Context[0].Key)
	assert.Equal(t, "method", entries[0].Context[1].Key)
}

func TestAdapter_NilLogger(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		logging.NewAdapter(nil).Error("dropped", map[string]interface{}{"k": "v"})
	})
}

func TestRetryLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	retryLogger := logging.NewRetryLogger(logging.NewAdapter(zap.New(core)))

	retryLogger.Debug("performing request", "method", "GET", "url", "https://contoso/api/data/v9.2/queues")
	retryLogger.Warn("dangling", "key")
	retryLogger.Info("plain")
	retryLogger.Error("request failed", "error", "boom")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	assert.Equal(t, "performing request", entries[0].Message)
	assert.Equal(t, map[string]interface{}{
		"method": "GET",
		"url":    "https://contoso/api/data/v9.2/queues",
	}, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{"key": nil}, entries[1].ContextMap())
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestOptionsFromEnv(t *testing.T) {
	t.Parallel()

	var output bytes.Buffer

	env := map[string]string{"LOG_LEVEL": "debug", "LOG_ENCODING": "json"}
	opts := logging.OptionsFromEnv(func(key string) (string, bool) {
		value, ok := env[key]

		return value, ok
	}, &output)

	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "json", opts.Encoding)
	assert.Same(t, &output, opts.Output)

	empty := logging.OptionsFromEnv(func(string) (string, bool) { return "", false }, &output)
	assert.Empty(t, empty.Level)
	assert.Empty(t, empty.Encoding)
}
