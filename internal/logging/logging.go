// Package logging implements nuvolos.Logger on top of logrus.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nuvolos-cloud/nuvolos-cli/pkg/nuvolos"
)

// Options configures a Logger.
type Options struct {
	Output  io.Writer
	Verbose bool
	NoColor bool
	JSON    bool
}

// Logger writes structured log lines through logrus.
type Logger struct {
	entry *logrus.Entry
}

var _ nuvolos.Logger = (*Logger)(nil)

// New creates a logger. Verbose enables debug level; otherwise only warnings
// and errors are written. Output defaults to stderr.
func New(opts Options) *Logger {
	base := logrus.New()

	base.Out = opts.Output
	if base.Out == nil {
		base.Out = os.Stderr
	}

	if opts.JSON {
		base.Formatter = &logrus.JSONFormatter{}
	} else {
		base.Formatter = &logrus.TextFormatter{
			DisableColors:    opts.NoColor,
			DisableTimestamp: true,
		}
	}

	base.Level = logrus.WarnLevel
	if opts.Verbose {
		base.Level = logrus.DebugLevel
	}

	return &Logger{entry: logrus.NewEntry(base)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Options{Output: io.Discard})
}

// With returns a logger that adds fields to every line.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}
