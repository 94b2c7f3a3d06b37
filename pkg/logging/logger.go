// Package logging provides a simple logging interface for go-webauthn-client
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger provides logging functionality for ceremony and transport operations
type Logger struct {
	logger *slog.Logger
	debug  bool
}

// NewLogger creates a new logger instance writing to stderr
func NewLogger(debug bool) *Logger {
	return NewLoggerWithWriter(debug, os.Stderr)
}

// NewLoggerWithWriter creates a new logger instance writing to the
// given writer
func NewLoggerWithWriter(debug bool, writer io.Writer) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		logger: slog.New(handler),
		debug:  debug,
	}
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) {
	if l.debug {
		l.logger.Debug(fmt.Sprintf(format, args...))
	}
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// DefaultLogger returns a default logger instance with debug=false
func DefaultLogger() *Logger {
	return NewLogger(false)
}
