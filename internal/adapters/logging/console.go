package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/felixgeelhaar/junction/internal/ports"
)

// ConsoleLogger writes structured entries to the console through logrus.
type ConsoleLogger struct {
	base         *logrus.Logger
	out          io.Writer
	level        ports.Level
	fields       logrus.Fields
	jsonFormat   bool
	includeTime  bool
	includeLevel bool
}

// ConsoleLoggerOption configures the console logger.
type ConsoleLoggerOption func(*ConsoleLogger)

// WithOutput sets the output writer (default: os.Stderr).
func WithOutput(w io.Writer) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.out = w
	}
}

// WithLevel sets the minimum log level (default: Info).
func WithLevel(level ports.Level) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.level = level
	}
}

// WithJSONFormat switches to logrus' JSON formatter.
func WithJSONFormat(enabled bool) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.jsonFormat = enabled
	}
}

// WithTimestamp includes timestamp in log entries.
func WithTimestamp(enabled bool) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.includeTime = enabled
	}
}

// WithLevelLabel includes the [LEVEL] label in text entries. JSON entries
// always carry a level key.
func WithLevelLabel(enabled bool) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.includeLevel = enabled
	}
}

// NewConsoleLogger creates a new console logger.
func NewConsoleLogger(opts ...ConsoleLoggerOption) *ConsoleLogger {
	l := &ConsoleLogger{
		out:          os.Stderr,
		level:        ports.LevelInfo,
		fields:       logrus.Fields{},
		includeTime:  true,
		includeLevel: true,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.base = logrus.New()
	l.base.SetOutput(l.out)
	// Filtering happens on l.level.
	l.base.SetLevel(logrus.DebugLevel)
	if l.jsonFormat {
		l.base.SetFormatter(&logrus.JSONFormatter{
			DisableTimestamp: !l.includeTime,
			TimestampFormat:  time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg: "msg",
			},
		})
	} else {
		l.base.SetFormatter(&textFormatter{timestamps: l.includeTime, levels: l.includeLevel})
	}

	return l
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelDebug, msg, fields)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelInfo, msg, fields)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelWarn, msg, fields)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelError, msg, fields)
}

// With returns a logger sharing the same output that adds fields to every entry.
func (l *ConsoleLogger) With(fields ...ports.Field) ports.Logger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	return &ConsoleLogger{
		base:         l.base,
		out:          l.out,
		level:        l.level,
		fields:       merged,
		jsonFormat:   l.jsonFormat,
		includeTime:  l.includeTime,
		includeLevel: l.includeLevel,
	}
}

// Level returns the minimum level, fixed at construction.
func (l *ConsoleLogger) Level() ports.Level {
	return l.level
}

func (l *ConsoleLogger) log(ctx context.Context, level ports.Level, msg string, fields []ports.Field) {
	if level < l.level {
		return
	}

	entry := l.base.WithFields(l.fields)
	if len(fields) > 0 {
		data := make(logrus.Fields, len(fields))
		for _, f := range fields {
			data[f.Key] = f.Value
		}
		entry = entry.WithFields(data)
	}
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}

	entry.Log(toLogrus(level), msg)
}

func toLogrus(level ports.Level) logrus.Level {
	switch level {
	case ports.LevelDebug:
		return logrus.DebugLevel
	case ports.LevelWarn:
		return logrus.WarnLevel
	case ports.LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func fromLogrus(level logrus.Level) ports.Level {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return ports.LevelDebug
	case logrus.WarnLevel:
		return ports.LevelWarn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return ports.LevelError
	default:
		return ports.LevelInfo
	}
}

// textFormatter renders "15:04:05 [INFO] msg key=value" lines with keys sorted.
type textFormatter struct {
	timestamps bool
	levels     bool
}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if f.timestamps {
		b.WriteString(e.Time.Format("15:04:05"))
		b.WriteByte(' ')
	}
	if f.levels {
		fmt.Fprintf(&b, "[%s] ", fromLogrus(e.Level))
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Ensure ConsoleLogger implements Logger.
var _ ports.Logger = (*ConsoleLogger)(nil)
