package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(io.Discard)
	level  = zerolog.InfoLevel
)

// Config controls where and how log lines are written
type Config struct {
	Level string
	JSON  bool

	// File enables rotated file logging in addition to Output
	File       string
	MaxSize    int
	MaxBackups int

	// Output defaults to stdout. The interactive terminal sets io.Discard
	// so log lines never interleave with the prompt.
	Output io.Writer
}

// Initialize sets up the logger with the given level and output format
func Initialize(cfg Config) {
	var output io.Writer = os.Stdout
	if cfg.Output != nil {
		output = cfg.Output
	}

	// Set up console writer for pretty output if not JSON
	if !cfg.JSON && output != io.Discard {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	if cfg.File != "" {
		maxSize := cfg.MaxSize
		if maxSize <= 0 {
			maxSize = 10
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
		}
		output = zerolog.MultiLevelWriter(output, rotated)
	}

	mu.Lock()
	defer mu.Unlock()

	level = ParseLevel(cfg.Level)
	logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info
func ParseLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the package logger
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message
func Debug(msg string) {
	l := Logger()
	l.Debug().Msg(msg)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	l := Logger()
	l.Debug().Msgf(format, args...)
}

// Info logs an info message
func Info(msg string) {
	l := Logger()
	l.Info().Msg(msg)
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	l := Logger()
	l.Info().Msgf(format, args...)
}

// Warn logs a warning message
func Warn(msg string) {
	l := Logger()
	l.Warn().Msg(msg)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	l := Logger()
	l.Warn().Msgf(format, args...)
}

// Error logs an error message
func Error(msg string) {
	l := Logger()
	l.Error().Msg(msg)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	l := Logger()
	l.Error().Msgf(format, args...)
}

// ErrorErr logs an error with an error object
func ErrorErr(msg string, err error) {
	l := Logger()
	l.Error().Err(err).Msg(msg)
}

// WithContainer returns a logger with container context
func WithContainer(containerID, containerName string) *zerolog.Logger {
	l := Logger().With().
		Str("container_id", containerID).
		Str("container_name", containerName).
		Logger()
	return &l
}

// WithImage returns a logger with image context
func WithImage(imageID, imageTag string) *zerolog.Logger {
	l := Logger().With().
		Str("image_id", imageID).
		Str("image_tag", imageTag).
		Logger()
	return &l
}

// WithCommand returns a logger with the raw command attached
func WithCommand(command string) *zerolog.Logger {
	l := Logger().With().
		Str("command", command).
		Logger()
	return &l
}

// ToggleDebug flips between debug and the configured level and reports
// whether debug is now on
func ToggleDebug() bool {
	mu.Lock()
	defer mu.Unlock()

	if logger.GetLevel() == zerolog.DebugLevel {
		logger = logger.Level(level)
		return false
	}
	logger = logger.Level(zerolog.DebugLevel)
	return true
}
