// Package logging provides structured logging using zerolog. Operator
// messages and per-record diagnostics go to stderr so that reports written to
// stdout stay clean.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewFromConfig(Config{
	Level:  os.Getenv("LOG_LEVEL"),
	Format: os.Getenv("LOG_FORMAT"),
})

// Nop discards everything. Handy in tests.
var Nop = zerolog.Nop()

// Config holds logger options.
type Config struct {
	// Level is one of trace, debug, info, warn, error. Empty means info.
	Level string

	// Format is json, console or auto (console on a terminal).
	Format string

	// Output defaults to stderr.
	Output io.Writer
}

// NewFromConfig builds a logger from cfg.
func NewFromConfig(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	format := strings.ToLower(cfg.Format)
	if format == "console" || (format != "json" && isTerminal(out)) {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// New creates a JSON logger writing to w at info level.
func New(w io.Writer) zerolog.Logger {
	return NewFromConfig(Config{Format: "json", Output: w})
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

type ctxKey struct{}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return &logger
	}
	return Default()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
