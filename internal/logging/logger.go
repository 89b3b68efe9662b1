// Package logging wraps a process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level     string // trace, debug, info, warn, error
	Format    string // json or console
	Caller    bool
	Timestamp bool
	Output    io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stdout,
	}
}

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init replaces the global logger. Safe to call more than once.
func Init(cfg Config) {
	logger := newLogger(cfg)

	mu.Lock()
	log = logger
	mu.Unlock()

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
}

func newLogger(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zctx := zerolog.New(out).With()
	if cfg.Timestamp {
		zctx = zctx.Timestamp()
	}
	if cfg.Caller {
		zctx = zctx.Caller()
	}
	return zctx.Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// With returns a child context of the global logger, e.g.
//
//	logger := logging.With().Str("component", "store").Logger()
func With() zerolog.Context {
	mu.RLock()
	defer mu.RUnlock()
	return log.With()
}

func Debug() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Debug()
}

func Info() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Info()
}

func Warn() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Warn()
}

func Error() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Error()
}

// Fatal logs and then calls os.Exit(1).
func Fatal() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return log.Fatal()
}
