package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusLogger wraps a logrus logger to implement the Logger interface.
type LogrusLogger struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// Options configures a LogrusLogger.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // "json" (default) or "text"
	Output io.Writer // defaults to os.Stderr
}

// NewLogrusLogger creates a new LogrusLogger with JSON formatter writing to stderr.
// Stdout is left to script reports.
func NewLogrusLogger(level string) *LogrusLogger {
	return NewLogrusLoggerWithOptions(Options{Level: level})
}

// NewLogrusLoggerWithOptions creates a LogrusLogger from explicit options.
func NewLogrusLoggerWithOptions(opts Options) *LogrusLogger {
	logger := logrus.New()

	switch strings.ToLower(opts.Format) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	return &LogrusLogger{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

func (l *LogrusLogger) entryFor(ctx context.Context, fields map[string]interface{}) *logrus.Entry {
	fields = mergeFields(ctx, fields)
	if fields == nil {
		return l.entry
	}
	return l.entry.WithFields(fields)
}

// Debug logs a debug-level message.
func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.entryFor(ctx, fields).Debug(msg)
}

// Info logs an info-level message.
func (l *LogrusLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.entryFor(ctx, fields).Info(msg)
}

// Warn logs a warning-level message.
func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	l.entryFor(ctx, fields).Warn(msg)
}

// Error logs an error-level message.
func (l *LogrusLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.entryFor(ctx, fields).Error(msg)
}

// WithField returns a new logger with the given field added.
func (l *LogrusLogger) WithField(key string, value interface{}) Logger {
	return &LogrusLogger{
		logger: l.logger,
		entry:  l.entry.WithField(key, value),
	}
}

// WithFields returns a new logger with the given fields added.
func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{
		logger: l.logger,
		entry:  l.entry.WithFields(fields),
	}
}
