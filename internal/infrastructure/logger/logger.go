package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"agri-api/internal/config"
)

// New creates a zerolog.Logger configured for the advisory service.
func New(cfg *config.Config) zerolog.Logger {
	return build(os.Stdout, cfg.LogLevel, cfg.LogFormat).
		With().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()
}

func build(out io.Writer, level, format string) zerolog.Logger {
	var w io.Writer = out
	if !strings.EqualFold(format, "json") {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	return log.Output(w).
		With().
		Timestamp().
		Logger().
		Level(parseLevel(level))
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
