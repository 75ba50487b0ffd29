package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := newWithWriter(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "table", "product")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "product", entry["table"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := newWithWriter(&buf, "debug", "text")
	logger.Debug("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
