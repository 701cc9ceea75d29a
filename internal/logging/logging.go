// Package logging centralizes structured logging setup. It is grounded in
// the cartographus reference's logging.Init/logging.L() package-level
// accessor pattern built on zerolog. It holds a single process-wide
// logger at one level (set from LOGLEVEL or the config file); there is no
// separate transport level, so the --server_log_level value that
// cmd/noisebox stores in config.Logging.ServerLevel is not applied to any
// logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(io.Discard)
)

// Config controls process-wide logging setup.
type Config struct {
	Level  string // "debug", "info", "warn", "error"; default "info"
	Pretty bool   // human-readable console output instead of JSON
}

// Init configures the package-level logger. Call once at process start;
// never read log configuration from globals at call sites afterward (spec
// §9 design note on configuration).
func Init(cfg Config) {
	level := parseLevel(cfg.Level)

	var writer io.Writer = os.Stderr
	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(writer).Level(level).With().Timestamp().Logger()

	mu.Lock()
	logger = l
	mu.Unlock()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// L returns the current package-level logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// WithComponent returns a child logger tagged with component, e.g.
// logging.WithComponent("transport").
func WithComponent(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}
