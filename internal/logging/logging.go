// Package logging configures the process-wide zerolog logger exactly once.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tessro/speck/internal/config"
)

var (
	once sync.Once
	base = zerolog.New(io.Discard)
	mu   sync.RWMutex
)

// Setup configures the base logger from cfg. Only the first call has any
// effect; later calls return false and leave the logger untouched.
func Setup(cfg config.LogConfig) bool {
	configured := false
	once.Do(func() {
		logger := newLogger(cfg, os.Stderr)
		mu.Lock()
		base = logger
		mu.Unlock()
		configured = true
	})
	return configured
}

// For returns a sub-logger tagged with the component name.
func For(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}

// newLogger builds the base logger. When cfg.File cannot be opened it
// logs to stderr instead and says so.
func newLogger(cfg config.LogConfig, stderr io.Writer) zerolog.Logger {
	level := ParseLevel(cfg.Level)

	output := stderr
	toFile := false
	var openErr error
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			openErr = err
		} else {
			output = f
			toFile = true
		}
	}

	if !cfg.JSON && !toFile {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("lib", "speck").
		Logger()

	if openErr != nil {
		logger.Warn().Err(openErr).Str("file", cfg.File).Msg("Failed to open log file, logging to stderr")
	}
	return logger
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch name {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
