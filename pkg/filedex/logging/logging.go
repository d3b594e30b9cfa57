// Package logging provides leveled, component-scoped loggers for filedex.
//
// Loggers are plain values: the CLI builds one from its flags and hands it
// to the packages that need it. There is no package-level logger state.
//
//	logger, err := logging.New(logging.Config{Level: "debug", Output: os.Stderr})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Component("create").Info("index written", "paths", n)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures a Logger.
type Config struct {
	// Level is the console log level (debug, info, warn, error).
	// Empty means "warn".
	Level string

	// Output receives console log lines. Nil means os.Stderr.
	Output io.Writer

	// Path, when set, additionally appends every record at debug level
	// to this file with full timestamps.
	Path string
}

// Logger wraps charmbracelet/log with component identification.
type Logger struct {
	console   *log.Logger
	file      *log.Logger
	closer    io.Closer
	component string
	level     Level
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	levelStr := cfg.Level
	if levelStr == "" {
		levelStr = "warn"
	}
	level, err := ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	l := &Logger{
		console: log.NewWithOptions(out, log.Options{
			Level:           level.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		}),
		level: level,
	}

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.file = log.NewWithOptions(f, log.Options{
			Level:           log.DebugLevel,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Formatter:       log.LogfmtFormatter,
		})
		l.closer = f
	}

	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{
		console: log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel}),
		level:   LevelError,
	}
}

// Component returns a logger that prefixes records with name.
// The returned logger shares the parent's outputs.
func (l *Logger) Component(name string) *Logger {
	if l == nil {
		return Discard()
	}
	c := &Logger{
		console:   l.console.WithPrefix(name),
		component: name,
		level:     l.level,
	}
	if l.file != nil {
		c.file = l.file.WithPrefix(name)
	}
	return c
}

// With returns a new logger with additional key/value context.
func (l *Logger) With(args ...interface{}) *Logger {
	c := &Logger{
		console:   l.console.With(args...),
		component: l.component,
		level:     l.level,
	}
	if l.file != nil {
		c.file = l.file.With(args...)
	}
	return c
}

// Level returns the console level.
func (l *Logger) Level() Level {
	return l.level
}

// Enabled reports whether records at level reach the console.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	if l == nil {
		return
	}
	logTo(l.console, level, msg, args...)
	if l.file != nil {
		logTo(l.file, level, msg, args...)
	}
}

func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// Close releases the log file, if any. Component loggers do not own it.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	if err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/filedex/filedex.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "filedex", "filedex.log")
}
