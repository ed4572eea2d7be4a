package log

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, lvl, f string) *bytes.Buffer {
	t.Helper()
	prevLevel := GetLogLevel()
	prevFormat := format

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Configure(lvl, f))

	t.Cleanup(func() {
		SetOutput(os.Stderr)
		_ = Configure(prevLevel, prevFormat)
	})
	return &buf
}

func TestConfigure(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, Configure("loud", ""))
	})

	t.Run("invalid format", func(t *testing.T) {
		assert.Error(t, Configure("", "xml"))
	})

	t.Run("json output carries component and fields", func(t *testing.T) {
		buf := capture(t, "debug", "json")
		LogDebugWithFields("test", "hello", map[string]any{"uid": "u1"})

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "test", entry["component"])
		assert.Equal(t, "u1", entry["uid"])
		assert.Contains(t, entry, "timestamp")
	})

	t.Run("level filters", func(t *testing.T) {
		buf := capture(t, "warn", "text")
		LogInfoWithFields("test", "dropped", nil)
		assert.Empty(t, buf.String())

		LogWarnWithFields("test", "kept", nil)
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("trace renders its own name", func(t *testing.T) {
		buf := capture(t, "trace", "json")
		LogTraceWithFields("test", "deep", nil)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "TRACE", entry["level"])
		assert.Equal(t, "trace", GetLogLevel())
	})
}
