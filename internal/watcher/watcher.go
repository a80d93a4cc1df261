// Package watcher detects changes to asset files and drives hot reload
// through the registry. Filesystem events and a periodic timestamp scan both
// feed a pending set; entries are promoted to an actual reload only after a
// debounce delay, so an editor's save-then-rewrite burst coalesces into one
// reload.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vehement/assetdb/internal/asset"
	"github.com/vehement/assetdb/internal/log"
	"github.com/vehement/assetdb/internal/pubsub"
)

// Clock provides the current time. Use RealClock for production and a fake
// for testing.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// ReloadTarget is the registry surface the watcher drives. Defined here so
// the watcher does not depend on the registry package.
type ReloadTarget interface {
	ReimportAsset(ctx context.Context, id string) (*asset.Asset, error)
	Unregister(id string) error
	IDForPath(path string) (string, bool)
	SetPendingReloads(n int)
}

// ReloadEvent describes one promoted change.
type ReloadEvent struct {
	ID      string
	Type    asset.Type
	Path    string
	Asset   *asset.Asset // nil when Deleted
	Deleted bool
}

// Callback receives reload events synchronously, on the thread driving
// Update. Callbacks fire in registration order; a slow callback delays the
// next tick.
type Callback func(ReloadEvent)

// Config holds watcher configuration options.
type Config struct {
	// PollInterval is how often Update rescans watched file timestamps.
	PollInterval time.Duration
	// Debounce is how long a detected change must sit quiet before it is
	// promoted to a reload.
	Debounce time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		Debounce:     500 * time.Millisecond,
	}
}

// Watcher tracks asset files by modification timestamp. All state behind mu,
// because fsnotify events arrive on their own goroutine while Update runs on
// the caller's.
type Watcher struct {
	mu        sync.Mutex
	cfg       Config
	clock     Clock
	target    ReloadTarget
	fsWatcher *fsnotify.Watcher
	broker    *pubsub.Broker[ReloadEvent]
	callbacks []Callback

	enabled  bool
	watched  map[string]time.Time // path -> last known mod time
	pending  map[string]time.Time // path -> time of detection
	dirs     map[string]bool      // directories registered with fsnotify
	lastScan time.Time
	done     chan struct{}
}

// New creates a watcher driving the given target. The watcher starts
// enabled; call Stop to release the fsnotify resources.
func New(cfg Config, target ReloadTarget, clock Clock) (*Watcher, error) {
	if clock == nil {
		clock = RealClock{}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:       cfg,
		clock:     clock,
		target:    target,
		fsWatcher: fsw,
		broker:    pubsub.NewBroker[ReloadEvent](),
		enabled:   true,
		watched:   make(map[string]time.Time),
		pending:   make(map[string]time.Time),
		dirs:      make(map[string]bool),
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch starts tracking a file. The current modification time becomes the
// baseline; the file's directory is registered with fsnotify so changes are
// noticed between polls.
func (w *Watcher) Watch(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.watched[path] = info.ModTime()

	dir := filepath.Dir(path)
	if !w.dirs[dir] {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	log.Debug(log.CatWatcher, "watching file", "path", path)
	return nil
}

// Unwatch stops tracking a file. Its directory stays registered; other
// tracked files may share it.
func (w *Watcher) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watched, path)
	delete(w.pending, path)
}

// Watched returns the number of tracked files.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

// SetEnabled toggles the watcher. While disabled, Update is a no-op and
// events accumulate nowhere.
func (w *Watcher) SetEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enabled = enabled
}

// Enabled reports whether the watcher is active.
func (w *Watcher) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// OnReload registers a callback. Callbacks run synchronously inside Update,
// in registration order.
func (w *Watcher) OnReload(cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Subscribe returns a channel of reload events, for consumers that prefer a
// channel over a synchronous callback.
func (w *Watcher) Subscribe(ctx context.Context) <-chan pubsub.Event[ReloadEvent] {
	return w.broker.Subscribe(ctx)
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	w.broker.Close()
	return w.fsWatcher.Close()
}

// loop feeds fsnotify events into the pending set. Promotion happens only in
// Update; this goroutine just records detection times.
func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			if _, tracked := w.watched[event.Name]; tracked && w.enabled {
				w.pending[event.Name] = w.clock.Now()
			}
			w.mu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "fsnotify error", err)

		case <-w.done:
			return
		}
	}
}

// Update runs one watcher tick: rescan timestamps if the poll interval has
// elapsed, then promote pending changes older than the debounce delay. It is
// meant to be called from the engine's per-frame update; when the watcher is
// disabled it does nothing.
func (w *Watcher) Update(ctx context.Context) {
	w.mu.Lock()
	if !w.enabled {
		w.mu.Unlock()
		return
	}

	now := w.clock.Now()
	if w.lastScan.IsZero() || now.Sub(w.lastScan) >= w.cfg.PollInterval {
		w.scanLocked(now)
		w.lastScan = now
	}

	promoted := w.promoteLocked(now)
	w.target.SetPendingReloads(len(w.pending))
	callbacks := append([]Callback(nil), w.callbacks...)
	w.mu.Unlock()

	// Reload outside the watcher lock; the registry has its own.
	for _, path := range promoted {
		w.reload(ctx, path, callbacks)
	}
}

// scanLocked compares every watched file's modification time against the
// last recorded value and stamps differing files as pending. Deleted files
// become pending too; promotion decides between reimport and unregister.
func (w *Watcher) scanLocked(now time.Time) {
	for path, lastMod := range w.watched {
		info, err := os.Stat(path)
		if err != nil {
			if _, already := w.pending[path]; !already {
				w.pending[path] = now
			}
			continue
		}
		if !info.ModTime().Equal(lastMod) {
			w.watched[path] = info.ModTime()
			w.pending[path] = now
		}
	}
}

// promoteLocked removes and returns pending paths whose detection age
// exceeds the debounce delay.
func (w *Watcher) promoteLocked(now time.Time) []string {
	var promoted []string
	for path, detected := range w.pending {
		if now.Sub(detected) >= w.cfg.Debounce {
			promoted = append(promoted, path)
			delete(w.pending, path)
		}
	}
	return promoted
}

// reload reimports a changed file or unregisters a deleted one, then
// notifies callbacks and broker subscribers. A reimport failure is logged
// and leaves the previous in-memory asset untouched; the watcher stays
// enabled.
func (w *Watcher) reload(ctx context.Context, path string, callbacks []Callback) {
	id, known := w.target.IDForPath(path)
	if !known {
		log.Warn(log.CatWatcher, "change on unregistered path", "path", path)
		w.Unwatch(path)
		return
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := w.target.Unregister(id); err != nil {
			log.ErrorErr(log.CatWatcher, "unregister after delete failed", err, "id", id)
			return
		}
		w.Unwatch(path)
		event := ReloadEvent{ID: id, Path: path, Deleted: true}
		w.notify(event, callbacks)
		log.Info(log.CatWatcher, "asset file deleted", "id", id, "path", path)
		return
	}

	a, err := w.target.ReimportAsset(ctx, id)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "hot reload failed", err, "id", id, "path", path)
		return
	}

	event := ReloadEvent{ID: id, Type: a.Metadata.Type, Path: path, Asset: a}
	w.notify(event, callbacks)
	log.Info(log.CatWatcher, "hot reloaded asset", "id", id, "path", path)
}

func (w *Watcher) notify(event ReloadEvent, callbacks []Callback) {
	for _, cb := range callbacks {
		cb(event)
	}
	eventType := pubsub.UpdatedEvent
	if event.Deleted {
		eventType = pubsub.DeletedEvent
	}
	w.broker.Publish(eventType, event)
}
