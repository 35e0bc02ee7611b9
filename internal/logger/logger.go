// Package logger provides structured JSON logging for the venue-events services.
//
// It wraps zap with a small API of levels and free-form fields so packages can
// log without importing zap directly. Every entry carries "timestamp", "level"
// and "message" keys; fields are added as top-level keys and errors under "error".
//
// Example usage:
//
//	logger.Info("listing fetched", logger.Fields{
//	    "source": "neumos",
//	    "events": 24,
//	})
//
//	logger.Warn("detail fetch failed", logger.Fields{
//	    "url":   detailURL,
//	    "index": 3,
//	})
package logger

import (
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger provides structured logging
type Logger struct {
	z *zap.Logger
}

var defaultLogger = New(LevelInfo, os.Stdout)

// ParseLevel converts "debug", "info", "warn" or "error" to a Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.LevelKey = "level"
	cfg.MessageKey = "message"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// New creates a logger writing JSON lines to output.
// Messages below level are discarded.
func New(level Level, output io.Writer) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(output)),
		level.zapLevel(),
	)
	return &Logger{z: zap.New(core)}
}

// NewFile creates a logger writing to a size-rotated file.
// The returned Closer must be closed before exit to flush the file.
func NewFile(level Level, path string) (*Logger, io.Closer) {
	w := &lumberjack.Logger{
		Filename:  path,
		MaxSize:   100,
		LocalTime: true,
		Compress:  true,
	}
	return New(level, w), w
}

// SetDefault sets the logger used by the package-level functions.
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{z: l.z.With(zapFields(fields, nil)...)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func zapFields(fields Fields, err error) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return out
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.z.Debug(message, zapFields(fields, nil)...)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.z.Info(message, zapFields(fields, nil)...)
}

// Warn logs a warning message with optional structured fields and error.
// Warnings mark degraded results that did not fail the request.
func (l *Logger) Warn(message string, fields Fields, err error) {
	l.z.Warn(message, zapFields(fields, err)...)
}

// Error logs an error message with optional structured fields and an error object.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.z.Error(message, zapFields(fields, err)...)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields, err error) {
	defaultLogger.Warn(message, fields, err)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
