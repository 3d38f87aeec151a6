package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dostini/maelnode/internal/config"
)

// New builds the diagnostic logger. w must not be the node's output stream;
// the binaries pass os.Stderr.
func New(cfg config.LogConfig, w io.Writer, app string) zerolog.Logger {
	out := w
	if strings.EqualFold(cfg.Format, config.FormatConsole) {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		}
	}

	ctx := zerolog.New(out).With().Str("app", app)
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}

	return ctx.Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel accepts zerolog level names plus a few aliases. Unknown values
// fall back to info.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace", "diagnostics":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
