package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"":        LogLevelInfo,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "text", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "attr", "x")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "attr=x")
}

func TestNewLogger_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf, Component: "inference"})

	logger.Debug("guard hit", "name", "x")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"component":"inference"`)
	assert.Contains(t, line, `"name":"x"`)
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}
