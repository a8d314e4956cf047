// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the docchat client.
package util

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// =============================================================================
// DEBUG LOG SINK
// =============================================================================

// The TUI owns the terminal, so diagnostics go to a file instead of
// stderr. Swallowed errors (malformed frames, bad history payloads) are
// recorded here and nowhere else.

var (
	logMu     sync.Mutex
	logger    = log.New(io.Discard, "", log.LstdFlags)
	logCloser io.Closer
)

// OpenLogFile directs the debug log to the given file, creating parent
// directories as needed. Before this is called, Debugf is a no-op.
func OpenLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	logMu.Lock()
	defer logMu.Unlock()
	if logCloser != nil {
		logCloser.Close()
	}
	logger = log.New(f, "", log.LstdFlags)
	logCloser = f
	return nil
}

// SetLogOutput redirects the debug log to an arbitrary writer. Used by
// tests and by the plain CLI mode, which logs to stderr.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logger = log.New(w, "", log.LstdFlags)
}

// Debugf writes one formatted line to the debug log.
func Debugf(format string, args ...any) {
	logMu.Lock()
	defer logMu.Unlock()
	logger.Printf(format, args...)
}

// CloseLog closes the log file if one is open.
func CloseLog() {
	logMu.Lock()
	defer logMu.Unlock()
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
	logger = log.New(io.Discard, "", log.LstdFlags)
}
