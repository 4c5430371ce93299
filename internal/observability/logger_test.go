// File: internal/observability/logger_test.go
package observability

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/listdrain/internal/config"
)

// memSink is a minimal WriteSyncer capturing console output for assertions.
type memSink struct {
	strings.Builder
}

func (m *memSink) Sync() error { return nil }

func TestInitializeConsoleLogger(t *testing.T) {
	ResetForTest()
	sink := &memSink{}

	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "listdrain-test",
		Colors:      config.ColorConfig{Info: "green"},
	}, zapcore.Lock(zapcore.AddSync(sink)))

	GetLogger().Info("hello from the console core")

	out := sink.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "hello from the console core")
	assert.Contains(t, out, colorGreen, "info level should be colorized")
	assert.Contains(t, out, "listdrain-test.")
}

func TestInitializeRespectsLevel(t *testing.T) {
	ResetForTest()
	sink := &memSink{}

	Initialize(config.LoggerConfig{
		Level:       "warn",
		Format:      "console",
		ServiceName: "listdrain-test",
	}, zapcore.Lock(zapcore.AddSync(sink)))

	GetLogger().Info("should be suppressed")
	GetLogger().Warn("should appear")

	out := sink.String()
	assert.NotContains(t, out, "should be suppressed")
	assert.Contains(t, out, "should appear")
}

func TestJSONFormatProducesParseableLines(t *testing.T) {
	ResetForTest()
	sink := &memSink{}

	Initialize(config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "listdrain-test",
	}, zapcore.Lock(zapcore.AddSync(sink)))

	GetLogger().Info("structured line")

	line := strings.TrimSpace(sink.String())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "structured line", decoded["msg"])
	assert.Equal(t, "INFO", decoded["level"])
}

func TestGetLoggerFallsBackBeforeInit(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger(), "fallback logger must always be usable")
}
