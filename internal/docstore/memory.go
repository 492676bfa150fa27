package docstore

import (
	"context"
	"encoding/json"
	"sync"
)

type memEntry struct {
	value []byte
	rev   uint64
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string]memEntry
	hub    *Hub
	closed bool
}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]memEntry),
		hub:  NewHub(),
	}
}

func (m *Memory) Read(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Document{}, ErrClosed
	}

	e, ok := m.docs[path]
	if !ok {
		return Document{Path: path}, nil
	}
	return Document{Path: path, Value: Clone(e.value), Revision: e.rev}, nil
}

func (m *Memory) Write(ctx context.Context, path string, value json.RawMessage, ifRevision uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if value == nil {
		return 0, ErrNilValue
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrClosed
	}
	cur := m.docs[path]
	if err := CheckRevision(path, cur.rev, ifRevision); err != nil {
		m.mu.Unlock()
		return 0, err
	}
	next := memEntry{value: Clone(value), rev: cur.rev + 1}
	m.docs[path] = next
	m.mu.Unlock()

	m.hub.Publish(Document{Path: path, Value: Clone(next.value), Revision: next.rev})
	return next.rev, nil
}

func (m *Memory) Observe(ctx context.Context, path string) (Subscription, error) {
	w, err := m.hub.Watch(ctx, path)
	if err != nil {
		return nil, err
	}
	doc, err := m.Read(ctx, path)
	if err != nil {
		w.Close()
		return nil, err
	}
	w.Offer(doc)
	return w, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return ctx.Err()
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.hub.Close()
	return nil
}

// Clone returns a copy of b that does not share its backing array.
func Clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
