package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	t.Setenv(EnvLogTimestamp, "")
	t.Setenv(EnvLogNoColor, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOnlyOverridesDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
log_no_color = true
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.NoColor)
	assert.Equal(t, FormatConsole, cfg.Log.Format)
	assert.True(t, cfg.Log.Timestamp)
	assert.Equal(t, Default().ReadBufferBytes, cfg.ReadBufferBytes)
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `read_buffer_bytes = 0`))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, `log_format = "xml"`))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, `log_level = [`))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
log_format = "console"
read_buffer_bytes = 4096
`)
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, FormatJSON, cfg.Log.Format)
	assert.False(t, cfg.Log.Timestamp)
	assert.False(t, cfg.Log.NoColor)
	assert.Equal(t, 4096, cfg.ReadBufferBytes)
}

func TestLoadRejectsUnknownFormatFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogFormat, "yaml")

	_, err := Load()
	assert.Error(t, err)
}
