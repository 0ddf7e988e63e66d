// Package logging provides the Logger used across the service, backed by
// logrus.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the printf style logger every component accepts.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Options configures New.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// BaseLogger wraps a logrus entry so children can carry fields.
type BaseLogger struct {
	entry *logrus.Entry
}

var _ Logger = (*BaseLogger)(nil)

// New builds a logrus backed logger. Unknown levels fall back to info.
func New(opts Options) *BaseLogger {
	l := logrus.New()

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	switch strings.ToLower(opts.Format) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	return &BaseLogger{entry: logrus.NewEntry(l)}
}

// Default is the fallback for components built without a logger: info
// level text on stdout.
func Default() *BaseLogger {
	return New(Options{Level: "info", Format: "text"})
}

// GetLogger returns a child logger tagged with the component name.
func (b *BaseLogger) GetLogger(component string) *BaseLogger {
	return b.WithField("component", component)
}

func (b *BaseLogger) WithField(key string, value any) *BaseLogger {
	return &BaseLogger{entry: b.entry.WithField(key, value)}
}

func (b *BaseLogger) WithFields(fields map[string]any) *BaseLogger {
	return &BaseLogger{entry: b.entry.WithFields(logrus.Fields(fields))}
}

// Writer exposes an io.Writer at info level, used by the HTTP access log.
func (b *BaseLogger) Writer() *io.PipeWriter {
	return b.entry.WriterLevel(logrus.InfoLevel)
}

func (b *BaseLogger) Debug(format string, args ...any) {
	b.entry.Debugf(format, args...)
}

func (b *BaseLogger) Info(format string, args ...any) {
	b.entry.Infof(format, args...)
}

func (b *BaseLogger) Warn(format string, args ...any) {
	b.entry.Warnf(format, args...)
}

func (b *BaseLogger) Error(format string, args ...any) {
	b.entry.Errorf(format, args...)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}
