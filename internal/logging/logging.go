// Package logging builds the service logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger.
type Options struct {
	// Level is a charmbracelet/log level name. Empty selects info.
	Level string
	// File, when set, receives a copy of every line with size-based rotation.
	File string
	// Prefix tags every line.
	Prefix string
	// Output defaults to os.Stderr.
	Output io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger and a closer that releases the log file, if any.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var writer io.Writer = os.Stderr
	if opts.Output != nil {
		writer = opts.Output
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writer = io.MultiWriter(writer, fileWriter)
		closer = fileWriter
	}

	logger := log.NewWithOptions(writer, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level == log.DebugLevel,
		Level:           level,
		Prefix:          opts.Prefix,
	})
	return logger, closer, nil
}
