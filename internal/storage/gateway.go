// Package storage bounds every document store call with the caller's
// operation timeout, turns store failures into retryable domain errors and
// runs read-modify-write cycles as conditional writes.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxAttempts = 8
)

// ErrContention is wrapped in a StorageError when a conditional write kept
// losing to concurrent writers.
var ErrContention = errors.New("too many concurrent writers")

// ErrNoChange tells Mutate that the document already has the wanted content.
var ErrNoChange = errors.New("no change")

type Gateway struct {
	store       docstore.Store
	backend     string
	timeout     time.Duration
	maxAttempts int
}

type Option func(*Gateway)

func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func WithBackend(name string) Option {
	return func(g *Gateway) { g.backend = name }
}

func New(store docstore.Store, opts ...Option) *Gateway {
	g := &Gateway{
		store:       store,
		backend:     "unknown",
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Gateway) Read(ctx context.Context, path string) (docstore.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	doc, err := g.store.Read(ctx, path)
	g.observe("read", start, err)
	if err != nil {
		return docstore.Document{}, domain.NewStorageError("read", path, err)
	}
	return doc, nil
}

func (g *Gateway) write(ctx context.Context, path string, value json.RawMessage, ifRevision uint64) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	_, err := g.store.Write(ctx, path, value, ifRevision)
	if errors.Is(err, docstore.ErrConflict) {
		g.observe("write", start, nil)
		return err
	}
	g.observe("write", start, err)
	return err
}

// Mutate reads path, lets fn derive the next value and writes it back on the
// revision that was read. A lost race starts over with a fresh read. Errors
// returned by fn end the cycle unchanged; returning ErrNoChange ends it
// without writing.
func (g *Gateway) Mutate(ctx context.Context, path string, fn func(doc docstore.Document) (json.RawMessage, error)) error {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		doc, err := g.Read(ctx, path)
		if err != nil {
			return err
		}

		next, err := fn(doc)
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		if err != nil {
			return err
		}

		err = g.write(ctx, path, next, doc.Revision)
		if err == nil {
			return nil
		}
		if errors.Is(err, docstore.ErrConflict) {
			observability.CASConflictsTotal.WithLabelValues(RecordKind(path)).Inc()
			continue
		}
		return domain.NewStorageError("write", path, err)
	}
	return domain.NewStorageError("write", path, ErrContention)
}

// Put writes value regardless of the current revision.
func (g *Gateway) Put(ctx context.Context, path string, value json.RawMessage) error {
	if err := g.write(ctx, path, value, docstore.AnyRevision); err != nil {
		return domain.NewStorageError("write", path, err)
	}
	return nil
}

// Observe is not bounded by the operation timeout; it lives as long as ctx or
// until the subscription is closed.
func (g *Gateway) Observe(ctx context.Context, path string) (docstore.Subscription, error) {
	sub, err := g.store.Observe(ctx, path)
	if err != nil {
		return nil, domain.NewStorageError("observe", path, err)
	}
	return sub, nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.store.Ping(ctx)
}

func (g *Gateway) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.StoreOpDuration.WithLabelValues(g.backend, op, result).Observe(time.Since(start).Seconds())
}

// RecordKind names the kind of document stored at path for metric labels.
func RecordKind(path string) string {
	switch {
	case path == "/users":
		return "users"
	case strings.HasSuffix(path, "/conversations"):
		return "conversations"
	case strings.HasSuffix(path, "/messages"):
		return "messages"
	default:
		return "profile"
	}
}
