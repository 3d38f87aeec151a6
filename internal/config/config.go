package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	EnvConfigPath   = "MAELNODE_CONFIG"
	EnvLogLevel     = "MAELNODE_LOG_LEVEL"
	EnvLogFormat    = "MAELNODE_LOG_FORMAT"
	EnvLogTimestamp = "MAELNODE_LOG_TIMESTAMP"
	EnvLogNoColor   = "MAELNODE_LOG_NOCOLOR"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type LogConfig struct {
	Level     string
	Format    string
	Timestamp bool
	NoColor   bool
}

type Config struct {
	Log             LogConfig
	ReadBufferBytes int
}

type fileConfig struct {
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
	LogTimestamp    bool   `toml:"log_timestamp"`
	LogNoColor      bool   `toml:"log_no_color"`
	ReadBufferBytes int    `toml:"read_buffer_bytes"`
}

func Default() Config {
	return Config{
		Log: LogConfig{
			Level:     "info",
			Format:    FormatConsole,
			Timestamp: true,
		},
		ReadBufferBytes: 64 * 1024,
	}
}

// Load reads the file named by MAELNODE_CONFIG, if any, then applies the
// MAELNODE_LOG_* environment overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(EnvConfigPath)); path != "" {
		var err error
		cfg, err = LoadFile(path)
		if err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overrides the defaults with the keys defined in a TOML file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load node config: %w", err)
	}

	if meta.IsDefined("log_level") {
		cfg.Log.Level = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.Log.Format = strings.TrimSpace(raw.LogFormat)
	}
	if meta.IsDefined("log_timestamp") {
		cfg.Log.Timestamp = raw.LogTimestamp
	}
	if meta.IsDefined("log_no_color") {
		cfg.Log.NoColor = raw.LogNoColor
	}
	if meta.IsDefined("read_buffer_bytes") {
		if raw.ReadBufferBytes <= 0 {
			return Config{}, fmt.Errorf("read_buffer_bytes must be positive, got %d", raw.ReadBufferBytes)
		}
		cfg.ReadBufferBytes = raw.ReadBufferBytes
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Log.Format = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Log.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.Log.NoColor = v
	}
	return cfg.validate()
}

func (c Config) validate() error {
	switch strings.ToLower(c.Log.Format) {
	case FormatConsole, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
