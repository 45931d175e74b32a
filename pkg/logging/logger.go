// Package logging configures the process-wide zerolog logger shared by the
// feed server and the feedgen CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum log level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// ServiceName is attached to every log line as "service".
const ServiceName = "tweakwise-feed"

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level written. Unknown values fall back to info.
	Level LogLevel

	// Pretty switches from JSON lines to console output.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON output at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// ParseLevel maps a configured level name to a zerolog level.
// "warning" is accepted as an alias of "warn".
func ParseLevel(level LogLevel) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// Setup installs the global logger and returns it. Loggers created with
// NewLogger afterwards inherit its output and fields.
func Setup(cfg Config) zerolog.Logger {
	level, levelErr := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
	log.Logger = logger

	if levelErr != nil {
		logger.Warn().Err(levelErr).Msg("Falling back to info level")
	}

	return logger
}

// NewLogger returns a child of the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Levels used across the feed pipeline:
//
//	debug  single queries and pages, throttle bucket updates, sink writes
//	info   resolved markets, per market/locale counts, run start and end
//	warn   throttling retries, throttle waits, skipped duplicate categories
//	error  failed runs, exhausted retries
//
// Common fields: run_id, market, locale, attempt, wait, error_class.
