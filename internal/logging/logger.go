package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures a Logger.
type Options struct {
	Level string
	JSON  bool
}

// Logger is the structured logger shared by the adapters and the command.
type Logger struct {
	l *log.Logger
}

// New creates a logger writing to w. An unknown level falls back to info.
func New(w io.Writer, opts Options) *Logger {
	level, err := log.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = log.InfoLevel
	}
	lo := log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "proxylog",
	}
	if opts.JSON {
		lo.Formatter = log.JSONFormatter
	}
	return &Logger{l: log.NewWithOptions(w, lo)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, Options{})
}

// With returns a logger that adds keyvals to every entry.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{l: l.l.With(keyvals...)}
}

func (l *Logger) Info(msg string, keyvals ...any) {
	l.l.Info(msg, keyvals...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.l.Infof(format, args...)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.l.Debugf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.l.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.l.Errorf(format, args...)
}
