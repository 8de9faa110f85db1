// Package logger builds the service's slog loggers: colourised tint output for
// terminals, JSON for log shippers.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Config struct {
	Level  Level
	Format Format
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every record when set.
	Service string
}

// New builds a logger. Unknown levels mean info and unknown formats mean text.
// Debug level also records the call site.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	level := parseLevel(cfg.Level)

	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug})
	} else {
		h = tint.NewHandler(out, &tint.Options{
			Level:      level,
			AddSource:  level <= slog.LevelDebug,
			TimeFormat: "15:04:05",
			NoColor:    !isTerminalStream(out),
		})
	}

	logger := slog.New(h)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger
}

func parseLevel(level Level) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(string(level)))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func isTerminalStream(w io.Writer) bool {
	return w == os.Stdout || w == os.Stderr
}

func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
