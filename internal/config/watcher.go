package config

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"uppf-claims/internal/observability/metrics"
	"uppf-claims/internal/platform/logger"
)

// Store holds the current configuration snapshot. Readers take a snapshot
// per unit of work; a reload never changes a snapshot already taken.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore constructs a store holding cfg.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.Set(cfg)
	return s
}

// Snapshot returns the current configuration.
func (s *Store) Snapshot() Config {
	return *s.current.Load()
}

// Policy returns the current business policy.
func (s *Store) Policy() Policy {
	return s.Snapshot().Policy
}

// Set replaces the current configuration.
func (s *Store) Set(cfg Config) {
	s.current.Store(&cfg)
}

// Watcher reloads the policy file into a Store when it changes on disk.
type Watcher struct {
	path  string
	store *Store
	log   *logger.Logger
}

// NewWatcher constructs a watcher for path.
func NewWatcher(path string, store *Store, log *logger.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("config watcher: empty path")
	}
	if store == nil {
		return nil, errors.New("config watcher: nil store")
	}
	return &Watcher{path: filepath.Clean(path), store: store, log: logger.OrNop(log)}, nil
}

// Start watches the file's directory until ctx is done. Editors often
// replace files by rename, so the directory is watched rather than the file.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return err
	}
	go func() {
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != w.path {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					w.Reload()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.log.Warn("config watcher error", "error", err)
			}
		}
	}()
	return nil
}

// Reload reads the file once. An invalid file keeps the previous snapshot.
func (w *Watcher) Reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		metrics.IncConfigReload(metrics.ResultError)
		w.log.Error("config reload failed, keeping previous policy", "path", w.path, "error", err)
		return
	}
	w.store.Set(cfg)
	metrics.IncConfigReload(metrics.ResultSuccess)
	w.log.Info("config reloaded", "path", w.path)
}
