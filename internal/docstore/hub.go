package docstore

import (
	"context"
	"sync"
)

// Hub fans document changes out to observers of a path. Each observer holds
// at most one pending document; a newer one replaces it.
type Hub struct {
	mu       sync.Mutex
	watchers map[string]map[*Watcher]struct{}
	closed   bool
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[*Watcher]struct{})}
}

// Watcher is one observer registered with a Hub. It implements Subscription.
type Watcher struct {
	hub  *Hub
	path string

	mu      sync.Mutex
	ch      chan Document
	lastRev uint64
	started bool
	closed  bool
	done    chan struct{}
}

// Watch registers an observer for path. The caller must Offer the current
// document afterwards so the observer starts from a known state.
func (h *Hub) Watch(ctx context.Context, path string) (*Watcher, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	w := &Watcher{
		hub:  h,
		path: path,
		ch:   make(chan Document, 1),
		done: make(chan struct{}),
	}
	if h.watchers[path] == nil {
		h.watchers[path] = make(map[*Watcher]struct{})
	}
	h.watchers[path][w] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			w.Close()
		case <-w.done:
		}
	}()
	return w, nil
}

func (h *Hub) Publish(doc Document) {
	h.mu.Lock()
	targets := make([]*Watcher, 0, len(h.watchers[doc.Path]))
	for w := range h.watchers[doc.Path] {
		targets = append(targets, w)
	}
	h.mu.Unlock()

	for _, w := range targets {
		w.Offer(doc)
	}
}

// Watching reports whether anyone observes path.
func (h *Hub) Watching(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[path]) > 0
}

// Paths lists every observed path.
func (h *Hub) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.watchers))
	for p := range h.watchers {
		out = append(out, p)
	}
	return out
}

func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Watcher
	for _, ws := range h.watchers {
		for w := range ws {
			all = append(all, w)
		}
	}
	h.mu.Unlock()

	for _, w := range all {
		w.Close()
	}
}

func (h *Hub) remove(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ws, ok := h.watchers[w.path]; ok {
		delete(ws, w)
		if len(ws) == 0 {
			delete(h.watchers, w.path)
		}
	}
}

// Offer hands doc to the observer unless it already saw this revision or a
// newer one.
func (w *Watcher) Offer(doc Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.started && doc.Revision <= w.lastRev {
		return
	}
	w.started = true
	w.lastRev = doc.Revision

	select {
	case w.ch <- doc:
	default:
		select {
		case <-w.ch:
		default:
		}
		w.ch <- doc
	}
}

func (w *Watcher) Updates() <-chan Document {
	return w.ch
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	close(w.ch)
	w.mu.Unlock()

	w.hub.remove(w)
	return nil
}
