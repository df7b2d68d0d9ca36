// Package logging implements ports.Logger: a logrus-backed ConsoleLogger for
// text or JSON console output and a NopLogger for quiet runs.
package logging

import (
	"context"

	"github.com/felixgeelhaar/junction/internal/ports"
)

// NopLogger discards everything. The app facade uses it when no logger is
// given.
type NopLogger struct{}

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug does nothing.
func (l *NopLogger) Debug(context.Context, string, ...ports.Field) {}

// Info does nothing.
func (l *NopLogger) Info(context.Context, string, ...ports.Field) {}

// Warn does nothing.
func (l *NopLogger) Warn(context.Context, string, ...ports.Field) {}

// Error does nothing.
func (l *NopLogger) Error(context.Context, string, ...ports.Field) {}

// With returns the receiver.
func (l *NopLogger) With(...ports.Field) ports.Logger {
	return l
}

var _ ports.Logger = (*NopLogger)(nil)

// New builds the logger the CLI uses from a level name and a format of
// "text" or "json".
func New(level, format string, opts ...ConsoleLoggerOption) (*ConsoleLogger, error) {
	lvl, err := ports.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	base := []ConsoleLoggerOption{WithLevel(lvl), WithJSONFormat(format == "json")}
	return NewConsoleLogger(append(base, opts...)...), nil
}
