// Package logger configures the logrus logger shared by the winuser commands.
// Logs go to stderr; stdout is reserved for resource JSON.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level       string
	Format      string
	File        string
	EventSource string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Logger is a configured logrus logger plus whatever sinks it owns.
type Logger struct {
	*logrus.Logger
	closers []io.Closer
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
	}

	l := &Logger{Logger: logrus.New()}
	l.SetLevel(level)

	switch opts.Format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		file := NewFileWriter(opts.File)
		l.closers = append(l.closers, file)
		out = io.MultiWriter(out, file)
	}
	l.SetOutput(out)

	if opts.EventSource != "" {
		hooks, err := windowsHooks(opts.EventSource)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("could not create event log hooks: %w", err)
		}
		for _, hook := range hooks {
			l.AddHook(hook)
		}
	}

	return l, nil
}

// NewFileWriter returns a rotating writer for filename.
func NewFileWriter(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// Close releases the log file.
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.closers = nil
	return first
}
