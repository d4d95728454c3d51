// Package log provides a minimal structured logging interface for pkgraph,
// backed by zerolog. The interface mirrors log/slog's variadic key-value
// style so the backend can be swapped without touching call sites.
package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is a structured logger with slog-style variadic fields.
type Logger interface {
	// Debug logs a debug-level message with optional key-value fields.
	Debug(msg string, fields ...any)
	// Info logs an info-level message with optional key-value fields.
	Info(msg string, fields ...any)
	// Warn logs a warn-level message with optional key-value fields.
	Warn(msg string, fields ...any)
	// Error logs an error-level message with optional key-value fields.
	Error(msg string, fields ...any)
	// With returns a Logger with the given fields pre-populated.
	With(fields ...any) Logger
}

var (
	mu     sync.RWMutex
	root   = newZerologLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
	global Logger
)

// SetLevel sets the global minimum log level. Accepted values are "debug",
// "info", "warn" and "error"; anything else falls back to info.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// SetLogger replaces the global logger. Intended for tests.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

// GetLogger returns the global logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global != nil {
		return global
	}
	return root
}

// GetLoggerWithName returns the global logger with a component name attached.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

type zerologLogger struct {
	zl zerolog.Logger
}

func newZerologLogger(zl zerolog.Logger) *zerologLogger {
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}
