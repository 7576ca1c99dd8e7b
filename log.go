package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/trainertoe/voice/internal/config"
)

var logOutput *os.File

func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	log.SetReportTimestamp(false)

	return func() error {
		if logOutput == nil {
			return nil
		}
		return logOutput.Close()
	}, nil
}

// configureLog applies the log settings once the configuration is known.
// With a log file every line goes to stderr and to the file.
func configureLog(lc config.LogConfig) error {
	level := log.InfoLevel
	if lc.Level != "" {
		l, err := log.ParseLevel(strings.ToLower(lc.Level))
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		level = l
	}
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if lc.File == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(lc.File), 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	logOutput = f

	log.SetDefault(log.NewWithOptions(io.MultiWriter(os.Stderr, f), log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}))
	return nil
}
