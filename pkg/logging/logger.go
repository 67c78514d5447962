// Package logging configures the process-wide zerolog logger shared by
// the cache manager, its stores, and cachectl.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum severity. The zero value is treated as info.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum severity to emit.
	Level LogLevel

	// Pretty switches from JSON lines to human-readable console output.
	Pretty bool

	// Output receives log lines. Nil falls back to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it. Component
// loggers created afterwards via NewLogger inherit this configuration.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// parseLevel converts LogLevel to zerolog.Level. Unknown names fall back
// to info rather than failing.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a logger tagged with the given component name
// (cache-manager, disk-store, redis-store, search-cache, cachectl).
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key, layer)
//   - Eviction decisions (victim key, access count, freed bytes)
//   - Read-through attempts against the backing store
//
// Info: Normal operation events
//   - Manager startup/shutdown
//   - Cache clears and prefix invalidations
//   - cachectl command results
//
// Warn: Warning conditions that don't prevent operation
//   - Dropped persistence work (queue full)
//   - Corrupt or unreadable snapshots (entry is healed away)
//   - Best-effort store deletes that failed
//
// Error: Error conditions requiring attention
//   - Store outages (read-through and purge failures)
//   - Persistence failures after the write was dequeued
//   - Configuration errors
//
// Context Fields:
//   - key: Cache key the event refers to
//   - layer: Tier that served a hit (memory, store)
//   - size_bytes: Entry or cache size in bytes
//   - entries: Number of resident entries
//   - access_count: Access count of an evicted entry
//   - ttl: Entry TTL
//   - error: Underlying failure
