// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the zerolog global logger for docbud.
//
// The TUI owns the terminal, so logs go to a file. One-shot CLI commands can
// additionally mirror them to stderr with a console writer.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls Setup.
type Options struct {
	// Level is a zerolog level name; unknown names fall back to info
	Level string
	// Path is the log file. Empty disables the file sink.
	Path string
	// Console mirrors log lines to stderr in human-readable form
	Console bool
}

// Setup installs the global logger and returns a closer for the log file.
// The closer is never nil.
func Setup(opts Options) (io.Closer, error) {
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
			return closer, err
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return closer, err
		}
		writers = append(writers, f)
		closer = f
	}
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	log.Logger = zerolog.New(w).With().Timestamp().Str("app", "docbud").Logger()
	return closer, nil
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
