// Package logger constructs the process-wide zerolog logger. Diagnostics
// go to stderr so the account table on stdout stays machine-readable.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger at the given level. Unknown levels fall back to
// info. With pretty enabled the console writer is used instead of JSON.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}
