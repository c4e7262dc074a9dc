// Package watch keeps the browse picker's entry cache fresh: an fsnotify
// watcher pinned to the navigator's current directory emits a refresh
// signal whenever entries appear, disappear, or are renamed there.
package watch

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"pathpick/internal/log"
)

// Refresher watches a single directory at a time. Watch errors degrade to
// "no auto-refresh"; they never break the browsing session.
type Refresher struct {
	fsWatcher *fsnotify.Watcher
	changes   chan string

	mu      sync.Mutex
	dir     string
	running bool
	stop    chan struct{}
}

// NewRefresher creates a refresher. Start must be called before it delivers
// anything.
func NewRefresher() (*Refresher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Refresher{
		fsWatcher: fsWatcher,
		changes:   make(chan string, 4),
		stop:      make(chan struct{}),
	}, nil
}

// Changes delivers the directory path whose listing went stale.
func (r *Refresher) Changes() <-chan string {
	return r.changes
}

// SetDirectory repins the watcher to dir, dropping the previous watch.
func (r *Refresher) SetDirectory(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dir == dir {
		return
	}
	if r.dir != "" {
		if err := r.fsWatcher.Remove(r.dir); err != nil {
			log.Debug("could not unwatch %s: %v", r.dir, err)
		}
	}
	r.dir = ""
	if err := r.fsWatcher.Add(dir); err != nil {
		log.LogWithFields(log.F("dir", dir), log.F("error", err)).Debug("auto-refresh unavailable")
		return
	}
	r.dir = dir
}

// Start begins delivering change signals.
func (r *Refresher) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stop = make(chan struct{})
	r.mu.Unlock()

	go func() {
		// Closing changes on exit releases any consumer ranging over it.
		defer close(r.changes)
		for {
			select {
			case event, ok := <-r.fsWatcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Remove) &&
					!event.Op.Has(fsnotify.Rename) {
					continue
				}
				r.mu.Lock()
				dir := r.dir
				r.mu.Unlock()
				if dir == "" {
					continue
				}
				// Non-blocking: a dropped signal just means the next event
				// triggers the refresh instead.
				select {
				case r.changes <- dir:
				default:
				}

			case err, ok := <-r.fsWatcher.Errors:
				if !ok {
					return
				}
				log.Debug("watcher error: %v", err)

			case <-r.stop:
				return
			}
		}
	}()
}

// Stop halts delivery and closes the underlying watcher.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.running = false
	close(r.stop)
	if err := r.fsWatcher.Close(); err != nil {
		log.Debug("error closing watcher: %v", err)
	}
}
