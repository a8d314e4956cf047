// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload watches a drop directory and quick-parses new files
// into the active conversation.
package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// DROP-DIRECTORY WATCHER
// =============================================================================

// Uploader is the slice of the backend client the watcher needs.
type Uploader interface {
	QuickParseFile(ctx context.Context, sessionID, path string, policy api.UploadPolicy) (*api.QuickParseResult, error)
}

// Result reports the outcome of one attempted upload.
type Result struct {
	Name string
	Err  error
}

// Watcher watches a drop directory. A file that appears there is left to
// settle for the debounce interval, validated against the upload policy,
// and quick-parsed into the session the SessionID callback names.
type Watcher struct {
	dir      string
	policy   api.UploadPolicy
	uploader Uploader

	// sessionID is read at upload time, not watch time, so a drop made
	// after switching conversations lands in the right session.
	sessionID func() string
	onResult  func(Result)

	debounce      time.Duration
	uploadTimeout time.Duration

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending map[string]pendingFile
}

// pendingFile tracks a file waiting out its debounce window. Size is
// re-checked before upload so a file still being copied in gets more time.
type pendingFile struct {
	lastChange time.Time
	lastSize   int64
}

// Options configures a drop-directory watcher.
type Options struct {
	// Debounce is how long a file must sit unchanged before upload.
	// Zero means 1s.
	Debounce time.Duration

	// UploadTimeout bounds one quick-parse call. Zero means 2m.
	UploadTimeout time.Duration
}

// NewWatcher creates a watcher for dir. onResult is called once per
// dropped file, from the watcher goroutine.
func NewWatcher(dir string, policy api.UploadPolicy, uploader Uploader, sessionID func() string, onResult func(Result), opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = time.Second
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 2 * time.Minute
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		dir:           dir,
		policy:        policy,
		uploader:      uploader,
		sessionID:     sessionID,
		onResult:      onResult,
		debounce:      opts.Debounce,
		uploadTimeout: opts.UploadTimeout,
		watcher:       fsw,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Watch creates the drop directory if needed and starts the event and
// debounce goroutines.
func (w *Watcher) Watch() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	w.mu.Lock()
	w.pending = make(map[string]pendingFile)
	w.mu.Unlock()

	go w.processEvents()
	go w.processPending()

	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// processEvents turns fsnotify events into pending entries.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleFileChange(event.Name)
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.forget(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.Debugf("upload: watcher error: %v", err)
		}
	}
}

// handleFileChange marks a file as pending. Hidden and partial-download
// files are skipped outright.
func (w *Watcher) handleFileChange(path string) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".part") ||
		strings.HasSuffix(base, ".crdownload") || strings.HasSuffix(base, ".tmp") {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	w.pending[path] = pendingFile{lastChange: time.Now(), lastSize: info.Size()}
	w.mu.Unlock()
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
}

// processPending uploads files whose debounce window has elapsed and
// whose size has stopped changing.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			for _, path := range w.takeSettled() {
				w.upload(path)
			}
		}
	}
}

// takeSettled removes and returns pending files that have settled. A file
// whose size moved since it was recorded gets a fresh debounce window.
func (w *Watcher) takeSettled() []string {
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	var settled []string
	for path, p := range w.pending {
		if now.Sub(p.lastChange) < w.debounce {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			continue
		}
		if info.Size() != p.lastSize {
			w.pending[path] = pendingFile{lastChange: now, lastSize: info.Size()}
			continue
		}

		settled = append(settled, path)
		delete(w.pending, path)
	}
	return settled
}

// upload validates and quick-parses one file.
func (w *Watcher) upload(path string) {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		w.report(Result{Name: name, Err: err})
		return
	}
	if err := w.policy.Validate(name, info.Size()); err != nil {
		w.report(Result{Name: name, Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.uploadTimeout)
	defer cancel()

	_, err = w.uploader.QuickParseFile(ctx, w.sessionID(), path, w.policy)
	if err != nil {
		w.report(Result{Name: name, Err: err})
		return
	}

	util.Debugf("upload: quick-parsed %s", name)
	w.report(Result{Name: name})
}

func (w *Watcher) report(r Result) {
	if w.onResult != nil {
		w.onResult(r)
	}
}
