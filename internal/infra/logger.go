package infra

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging contract shared by the packages that take a pointer
// to an optional logger.
type Logger = zerolog.Logger

// NewLogger returns the process logger: JSON on stdout, or a console writer
// with caller info in development. The level defaults to debug in
// development and info elsewhere; a non-empty level name overrides it.
func NewLogger(appEnv, level string) zerolog.Logger {
	dev := strings.EqualFold(appEnv, "development")

	lvl := zerolog.InfoLevel
	if dev {
		lvl = zerolog.DebugLevel
	}
	if name := strings.ToLower(strings.TrimSpace(level)); name != "" {
		if parsed, err := zerolog.ParseLevel(name); err == nil {
			lvl = parsed
		}
	}

	ctx := zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("service", applicationName)
	if dev {
		return ctx.Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	return ctx.Str("env", appEnv).Logger()
}
