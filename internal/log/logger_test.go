package log

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"regrename/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Info("info message")
	assert.Contains(t, buf.String(), "level=info")
	assert.Contains(t, buf.String(), "info message")
	buf.Reset()

	l.Warn("warn message")
	assert.Contains(t, buf.String(), "level=warning")
	buf.Reset()

	l.Error("error message")
	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "error message")
	buf.Reset()

	l.Infof("formatted %s", "message")
	assert.Contains(t, buf.String(), "formatted message")
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Debug("debug message")
	assert.Empty(t, buf.String())

	l = NewLogger(WithOutput(&buf), WithDebug(true))
	l.Debugf("formatted %s", "debug")
	assert.Contains(t, buf.String(), "level=debug")
	assert.Contains(t, buf.String(), "formatted debug")
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.With(F("key1", "value1")).With(F("key2", 123)).Info("chained fields")
	output := buf.String()
	assert.Contains(t, output, "chained fields")
	assert.Contains(t, output, "key1=value1")
	assert.Contains(t, output, "key2=123")
}

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithJSON())

	l.With(F("key1", "value1"), F("key2", 123)).Info("structured json")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "structured json", entry["message"])
	assert.Contains(t, entry, "timestamp")
	assert.Equal(t, "value1", entry["key1"])
	assert.Equal(t, float64(123), entry["key2"])
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := logger
	Configure(WithOutput(&buf))
	defer func() { logger = originalLogger }()

	renameErr := errors.NewRenameError("rename failed", "/data/a.txt", errors.IOError, os.ErrPermission)
	LogWithError(renameErr).Error("rename stopped")
	output := buf.String()
	assert.Contains(t, output, "rename stopped")
	assert.Contains(t, output, "error_kind=IOError")
	assert.Contains(t, output, "path=/data/a.txt")
	buf.Reset()

	configErr := errors.NewConfigError("invalid value", "settings.log_format", errors.InvalidConfig, nil)
	LogError(configErr, "config rejected")
	output = buf.String()
	assert.Contains(t, output, "config rejected")
	assert.Contains(t, output, "param=settings.log_format")
	assert.Contains(t, output, "error_kind=InvalidConfig")
	buf.Reset()

	LogWithError(errors.New("plain")).Error("plain error")
	output = buf.String()
	assert.Contains(t, output, "plain error")
	assert.NotContains(t, output, "error_kind")
}

func TestPackageLevelDebug(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := logger
	Configure(WithOutput(&buf))
	defer func() { logger = originalLogger }()

	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetDebug(true)
	Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Same(t, logger, Default())
}
