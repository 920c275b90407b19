// Package logging configures the process wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel converts a level name into a zerolog level. An empty name means info
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level '%s': %w", name, err)
	}
	return level, nil
}

// Initialize sets up the global logger. Console output is human readable, otherwise every line is a JSON object
func Initialize(level zerolog.Level, console bool) {
	InitializeWithWriter(os.Stderr, level, console)
}

// InitializeWithWriter is Initialize with a custom destination
func InitializeWithWriter(out io.Writer, level zerolog.Level, console bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
}

// Get returns a logger for a specific component
func Get(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
