// Package watch monitors the version marker file and re-validates it on
// every write. Editors replace files via rename, so the watcher observes
// the parent directory rather than the file itself.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"relkit/internal/logging"
	"relkit/internal/version"
)

// OnChange receives the freshly parsed version after a valid marker write.
type OnChange func(v version.Version)

// Stats tracks watcher activity for tests and debugging.
type Stats struct {
	Writes        int
	ValidParses   int
	ParseFailures int
	LastVersion   string
	LastEventTime time.Time
}

// Watcher observes one version marker file.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	markerPath  string
	onChange    OnChange
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	log         *logging.Logger

	stats Stats
}

// New creates a Watcher for the marker at markerPath. onChange may be nil.
func New(markerPath string, onChange OnChange) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     fsw,
		markerPath:  filepath.Clean(markerPath),
		onChange:    onChange,
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond, // Collapse rapid editor saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		log:         logging.Get(logging.CategoryWatch),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.markerPath)); err != nil {
		return err
	}

	go w.loop(ctx)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.markerPath {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	now := time.Now()
	if last, ok := w.debounceMap[event.Name]; ok && now.Sub(last) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.debounceMap[event.Name] = now
	w.stats.Writes++
	w.stats.LastEventTime = now
	w.mu.Unlock()

	v, err := version.ReadFile(w.markerPath)
	if err != nil {
		w.mu.Lock()
		w.stats.ParseFailures++
		w.mu.Unlock()
		w.log.Warn("marker invalid after write: %v", err)
		return
	}

	w.mu.Lock()
	w.stats.ValidParses++
	w.stats.LastVersion = v.String()
	w.mu.Unlock()
	w.log.Info("marker now %s", v)

	if w.onChange != nil {
		w.onChange(v)
	}
}
