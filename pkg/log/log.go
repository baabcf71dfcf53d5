// Package log configures the zerolog logger shared by the host tools.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for the shared logger.
type Config struct {
	Level   string    // optional level ("debug", "info", ...), LOG_LEVEL otherwise
	Output  io.Writer // defaults to os.Stderr
	Console bool      // human readable output instead of JSON
	Verbose bool      // annotate entries with the calling file:line
}

var (
	once sync.Once
	base zerolog.Logger
)

// New builds a logger from cfg without touching the shared one.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	name := cfg.Level
	if name == "" {
		name = os.Getenv("LOG_LEVEL")
	}
	if name != "" {
		if parsed, err := zerolog.ParseLevel(name); err == nil {
			level = parsed
		}
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	if cfg.Console {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(writer).Level(level).With().Timestamp()
	if cfg.Verbose {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Configure initialises the shared logger exactly once.
func Configure(cfg Config) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		base = New(cfg)
	})
}

// Base returns the shared logger, configuring defaults on first use.
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child of the shared logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
