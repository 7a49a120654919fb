// Package logging wires charmbracelet/log into the small Logger interface
// that relinstall's library packages accept.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Logger provides structured logging. It matches the method set the binary
// and config packages declare, so an adapted logger can be handed to both.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Options controls logger construction.
type Options struct {
	// Verbose enables debug-level output.
	Verbose bool
	// Prefix is printed before every line. Defaults to "relinstall".
	Prefix string
}

// New returns a charmbracelet logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "relinstall"
	}

	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: false,
	})
}

// Adapt wraps l so it satisfies Logger.
func Adapt(l *log.Logger) Logger {
	return &charmLogger{l: l}
}

type charmLogger struct {
	l *log.Logger
}

func (c *charmLogger) Debug(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c *charmLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Info(msg, keysAndValues...)
}

func (c *charmLogger) Warn(msg string, keysAndValues ...interface{}) {
	c.l.Warn(msg, keysAndValues...)
}

func (c *charmLogger) Error(msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, keysAndValues...)
}
