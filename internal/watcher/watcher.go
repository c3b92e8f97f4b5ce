package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType classifies a filesystem change by what it means to a reviewer.
type EventType string

const (
	PlanChanged    EventType = "plan:changed"
	PlanAdded      EventType = "plan:added"
	PlanRemoved    EventType = "plan:removed"
	ReviewsChanged EventType = "reviews:changed"
)

// Event names a plan whose backing file or review file changed. It carries
// identifiers only, never content; subscribers re-fetch full state.
type Event struct {
	Type   EventType `json:"type"`
	Path   string    `json:"path"`
	PlanID string    `json:"id"`
}

const (
	// DefaultDebounce is how long a file must stay quiet before its change
	// is emitted, coalescing editor save-rename bursts into one event.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultPollInterval is how often pending changes are checked for
	// having settled.
	DefaultPollInterval = 100 * time.Millisecond

	subscriberBuffer = 16
)

// Watcher observes the plans and reviews directories and fans classified,
// debounced change events out to subscribers. Delivery is at-least-once and
// fire-and-forget: a subscriber whose buffer is full misses the event and is
// expected to reconcile by re-fetching.
type Watcher struct {
	plansDir     string
	reviewsDir   string
	debounce     time.Duration
	pollInterval time.Duration
	log          *slog.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	pending map[string]pendingEvent
	subs    map[int]chan Event
	nextSub int
	closed  bool
}

type pendingEvent struct {
	event    Event
	lastSeen time.Time
}

// New creates a Watcher over the two directories. Zero durations fall back
// to the defaults.
func New(plansDir, reviewsDir string, debounce, pollInterval time.Duration, log *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	for _, dir := range []string{plansDir, reviewsDir} {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return &Watcher{
		plansDir:     plansDir,
		reviewsDir:   reviewsDir,
		debounce:     debounce,
		pollInterval: pollInterval,
		log:          log,
		fsw:          fsw,
		done:         make(chan struct{}),
		pending:      make(map[string]pendingEvent),
		subs:         make(map[int]chan Event),
	}, nil
}

// Start launches the intake and flush goroutines.
func (w *Watcher) Start() {
	go w.intake()
	go w.flushLoop()
	w.log.Info("watching for changes", "plans", w.plansDir, "reviews", w.reviewsDir)
}

// Close stops watching and closes all subscriber channels.
func (w *Watcher) Close() {
	close(w.done)
	w.fsw.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for id, ch := range w.subs {
		close(ch)
		delete(w.subs, id)
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber goes away; the channel is closed either by
// cancel or by Close.
func (w *Watcher) Subscribe() (<-chan Event, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if w.closed {
		close(ch)
		return ch, func() {}
	}

	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if sub, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// intake classifies raw fsnotify events and records them as pending. Later
// events for the same path overwrite earlier ones, so a create-write burst
// collapses to the final classification.
func (w *Watcher) intake() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			classified, ok := w.classify(ev.Name, ev.Op)
			if !ok {
				continue
			}
			w.mu.Lock()
			// A freshly created file is still "added" through its initial
			// write burst; anything else takes the latest classification.
			if prev, exists := w.pending[ev.Name]; exists &&
				prev.event.Type == PlanAdded && classified.Type == PlanChanged {
				classified = prev.event
			}
			w.pending[ev.Name] = pendingEvent{event: classified, lastSeen: time.Now()}
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("fs watcher error", "error", err)
		}
	}
}

// flushLoop emits pending events whose path has been quiet for the full
// debounce window.
func (w *Watcher) flushLoop() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case now := <-ticker.C:
			var ready []Event
			w.mu.Lock()
			for path, p := range w.pending {
				if now.Sub(p.lastSeen) >= w.debounce {
					ready = append(ready, p.event)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, ev := range ready {
				w.broadcast(ev)
			}
		}
	}
}

// broadcast delivers one event to every subscriber, skipping any whose
// buffer is full rather than blocking the flush loop.
func (w *Watcher) broadcast(ev Event) {
	w.log.Info("change detected", "type", string(ev.Type), "plan", ev.PlanID)

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// classify maps a raw filesystem event to a review event, or discards it.
// Markdown files in the plans dir drive the plan:* kinds; JSON files in the
// reviews dir all collapse to reviews:changed. Everything else, including
// the store's own .tmp staging files, is noise.
func (w *Watcher) classify(path string, op fsnotify.Op) (Event, bool) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	id := strings.TrimSuffix(filepath.Base(path), ext)

	switch {
	case dir == filepath.Clean(w.plansDir) && ext == ".md":
		var typ EventType
		switch {
		case op.Has(fsnotify.Create):
			typ = PlanAdded
		case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
			typ = PlanRemoved
		case op.Has(fsnotify.Write):
			typ = PlanChanged
		default:
			return Event{}, false
		}
		return Event{Type: typ, Path: path, PlanID: id}, true

	case dir == filepath.Clean(w.reviewsDir) && ext == ".json":
		if op.Has(fsnotify.Create) || op.Has(fsnotify.Write) || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			return Event{Type: ReviewsChanged, Path: path, PlanID: id}, true
		}
		return Event{}, false
	}
	return Event{}, false
}
