// Package log provides structured logging for splay4d on top of logrus.
// A package-level logger covers the common case; NewLogger builds an
// isolated instance for tests or embedding.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"splay4d/internal/errors"
)

var logger = NewLogger()

// Field is a single structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a structured logging field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger wraps a logrus logger with the application's logging conventions
type Logger struct {
	l *logrus.Logger
}

// Option configures a Logger
type Option func(*Logger)

// WithOutput directs log output to w
func WithOutput(w io.Writer) Option {
	return func(lg *Logger) {
		lg.l.SetOutput(w)
	}
}

// WithJSON switches the logger to JSON formatting
func WithJSON() Option {
	return func(lg *Logger) {
		lg.l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

// NewLogger creates a logger with the default text format
func NewLogger(opts ...Option) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		TimestampFormat:        "2006-01-02 15:04:05",
		DisableLevelTruncation: true,
	})

	lg := &Logger{l: l}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Configure applies options to the package-level logger
func Configure(opts ...Option) {
	for _, opt := range opts {
		opt(logger)
	}
}

// SetDebug toggles debug-level logging on the package-level logger
func SetDebug(debug bool) {
	if debug {
		logger.l.SetLevel(logrus.DebugLevel)
	} else {
		logger.l.SetLevel(logrus.InfoLevel)
	}
}

// With returns an entry carrying the given fields
func (lg *Logger) With(fields ...Field) *logrus.Entry {
	logrusFields := make(logrus.Fields, len(fields))
	for _, f := range fields {
		logrusFields[f.Key] = f.Value
	}
	return lg.l.WithFields(logrusFields)
}

// Info logs a formatted message at info level
func (lg *Logger) Info(format string, args ...interface{}) {
	lg.l.Infof(format, args...)
}

// Warn logs a formatted message at warning level
func (lg *Logger) Warn(format string, args ...interface{}) {
	lg.l.Warnf(format, args...)
}

// Error logs a formatted message at error level
func (lg *Logger) Error(format string, args ...interface{}) {
	lg.l.Errorf(format, args...)
}

// Debug logs a formatted message at debug level
func (lg *Logger) Debug(format string, args ...interface{}) {
	lg.l.Debugf(format, args...)
}

// Info logs a formatted message at info level
func Info(format string, args ...interface{}) {
	logger.l.Infof(format, args...)
}

// Infof logs a formatted message at info level
func Infof(format string, args ...interface{}) {
	logger.l.Infof(format, args...)
}

// Warn logs a formatted message at warning level
func Warn(format string, args ...interface{}) {
	logger.l.Warnf(format, args...)
}

// Warnf logs a formatted message at warning level
func Warnf(format string, args ...interface{}) {
	logger.l.Warnf(format, args...)
}

// Error logs a formatted message at error level
func Error(format string, args ...interface{}) {
	logger.l.Errorf(format, args...)
}

// Errorf logs a formatted message at error level
func Errorf(format string, args ...interface{}) {
	logger.l.Errorf(format, args...)
}

// Debug logs a formatted message at debug level
func Debug(format string, args ...interface{}) {
	logger.l.Debugf(format, args...)
}

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...interface{}) {
	logger.l.Debugf(format, args...)
}

// LogWithFields returns an entry on the package-level logger carrying fields
func LogWithFields(fields ...Field) *logrus.Entry {
	return logger.With(fields...)
}

// LogWithError returns an entry carrying the error message and its kind
func LogWithError(err error) *logrus.Entry {
	return logger.With(
		F("error", err.Error()),
		F("error_kind", int(errors.KindOf(err))),
	)
}
