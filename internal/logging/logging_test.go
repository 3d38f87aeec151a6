package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dostini/maelnode/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":            zerolog.InfoLevel,
		"TRACE":       zerolog.TraceLevel,
		"diagnostics": zerolog.TraceLevel,
		" debug ":     zerolog.DebugLevel,
		"warning":     zerolog.WarnLevel,
		"error":       zerolog.ErrorLevel,
		"off":         zerolog.Disabled,
		"bogus":       zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "warn", Format: config.FormatJSON}, &buf, "echo")

	log.Info().Msg("hidden")
	log.Warn().Int("line", 3).Msg("dropping malformed message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "echo", entry["app"])
	assert.Equal(t, float64(3), entry["line"])
	assert.Equal(t, "dropping malformed message", entry["message"])
	assert.NotContains(t, entry, "time")
}

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "info", Format: config.FormatConsole, NoColor: true, Timestamp: true}, &buf, "broadcast")

	log.Info().Str("node_id", "n1").Msg("node initialized")

	assert.Contains(t, buf.String(), "node initialized")
	assert.Contains(t, buf.String(), "node_id=n1")
}
