package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dostini/maelnode/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvConfigPath,
		config.EnvLogLevel,
		config.EnvLogFormat,
		config.EnvLogTimestamp,
		config.EnvLogNoColor,
	} {
		t.Setenv(key, "")
	}
}

func TestNewNodeRejectsUnknownLogFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvLogFormat, "yaml")

	n, _, err := NewNode("echo")
	require.Error(t, err)
	assert.Nil(t, n)
	assert.Contains(t, err.Error(), "echo: ")
}

func TestNewNodeReportsBadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "node.toml")
	require.NoError(t, os.WriteFile(path, []byte("read_buffer_bytes = ["), 0o600))
	t.Setenv(config.EnvConfigPath, path)

	n, _, err := NewNode("broadcast")
	require.Error(t, err)
	assert.Nil(t, n)
	assert.Contains(t, err.Error(), "broadcast: ")
}

func TestNewNodeUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvLogFormat, config.FormatJSON)
	t.Setenv(config.EnvLogLevel, "debug")

	n, log, err := NewNode("unique-id")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.False(t, n.Identity().Initialized())
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}
