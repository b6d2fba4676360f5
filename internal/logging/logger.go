// Package logging builds the zerolog logger used across the application.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/bank-column-mapper/internal/config"
)

// New creates a structured logger writing to w, configured from cfg.
// Console output is human readable; "json" emits one object per line.
func New(cfg *config.Config, w io.Writer) zerolog.Logger {
	var out io.Writer = w
	if !strings.EqualFold(cfg.LogFormat, "json") {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).Level(ParseLevel(cfg.LogLevel)).With().Timestamp().Logger()
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
