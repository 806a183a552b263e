// Package pioneerlog provides the structured, leveled logger shared by every
// Pioneer component. It wraps zerolog the way cuemby-warren's pkg/log does:
// a package-level Logger plus an Init that fixes the level and output format
// once at process startup.
package pioneerlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide structured logger. Components take a
// *zerolog.Logger (usually via With().Str("component", name).Logger())
// rather than reaching for this global directly, but Logger is the
// bootstrap instance used before any component-specific logger exists.
var Logger zerolog.Logger

// Level mirrors the small set of levels Pioneer's configuration exposes.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config controls how Init builds the global logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init builds the global Logger from cfg. Safe to call more than once; the
// last call wins.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var writer io.Writer = out
	if !cfg.JSONOutput {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the given component name,
// the pattern every Pioneer package uses to identify its log lines.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

func init() {
	Init(Config{Level: InfoLevel})
}
