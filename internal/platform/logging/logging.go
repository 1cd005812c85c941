// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package logging builds the process-wide [slog.Logger] shared by both binaries.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a structured logger writing to stdout and installs it as the default.
//
// # Parameters
//   - format: "json" (default) or "text".
//   - debug: lowers the level to Debug when true.
//   - app: value of the global "app" attribute.
func New(format string, debug bool, app string) *slog.Logger {
	return NewWithWriter(os.Stdout, format, debug, app)
}

// NewWithWriter is [New] with an explicit destination, used by tests.
func NewWithWriter(writer io.Writer, format string, debug bool, app string) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(writer, options)
	} else {
		handler = slog.NewJSONHandler(writer, options)
	}

	logger := slog.New(handler).With(slog.String("app", app))
	slog.SetDefault(logger)

	return logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
