// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for docchat.
package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the config file when it changes on disk and hands the
// fresh Config to a callback. Editors that replace the file (write to a
// temp file, then rename) are handled by watching the parent directory.
type Watcher struct {
	path     string
	onChange func(*Config)
	debounce time.Duration

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc

	mu          sync.Mutex
	lastChanged time.Time
}

// NewWatcher creates a watcher for the given config file. The callback
// runs on the watcher goroutine with each successfully reloaded config;
// a file revision that fails to parse or validate is skipped with a log
// line, keeping the previous config in effect.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 250 * time.Millisecond,
		watcher:  fw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts following the config file.
func (w *Watcher) Watch() error {
	// Watch the directory, not the file: rename-based saves would
	// otherwise orphan the watch.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents()
	return nil
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handleChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.Debugf("config: watch error: %v", err)
		}
	}
}

// handleChange reloads after a debounce window so a burst of events from
// one save triggers a single reload.
func (w *Watcher) handleChange() {
	w.mu.Lock()
	now := time.Now()
	if now.Sub(w.lastChanged) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.lastChanged = now
	w.mu.Unlock()

	time.Sleep(w.debounce)

	cfg, err := LoadFromPath(w.path)
	if err != nil {
		util.Debugf("config: reload skipped: %v", err)
		return
	}

	util.Debugf("config: reloaded from %s", w.path)
	w.onChange(cfg)
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}
