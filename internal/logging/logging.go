package logging

import (
	"context"
	"log"
	"os"
)

var (
	disabled = false
	logger   = log.New(os.Stdout, "", log.LstdFlags)
)

// Disable turns off all logging
func Disable() {
	disabled = true
}

// Enable turns logging back on
func Enable() {
	disabled = false
}

// Info logs an info message
func Info(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Error logs an error message
func Error(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Errorf logs a formatted error message
func Errorf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Warn logs a warning message
func Warn(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Debug logs a debug message (same as Info when not disabled)
func Debug(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request id to ctx for later retrieval by WithContext.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Logger is a simple logger that prefixes every line with a request id.
type Logger struct {
	prefix string
}

// WithContext creates a Logger that tags its output with the request id
// carried on ctx, if any (see WithRequestID).
func WithContext(ctx context.Context) Logger {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return Logger{prefix: "[" + id + "] "}
	}
	return Logger{}
}

// Info logs an info message
func (l Logger) Info(v ...any) {
	if !disabled {
		logger.Println(append([]any{l.prefix}, v...)...)
	}
}

// Infof logs a formatted info message
func (l Logger) Infof(format string, v ...any) {
	Infof(l.prefix+format, v...)
}

// Error logs an error message
func (l Logger) Error(v ...any) {
	if !disabled {
		logger.Println(append([]any{l.prefix}, v...)...)
	}
}

// Errorf logs a formatted error message
func (l Logger) Errorf(format string, v ...any) {
	Errorf(l.prefix+format, v...)
}

// Warnf logs a formatted warning message
func (l Logger) Warnf(format string, v ...any) {
	Warnf(l.prefix+format, v...)
}
