package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

// Stream delivers every snapshot of one path to a callback. Callbacks run
// one at a time on the stream's own goroutine.
type Stream struct {
	sub     docstore.Subscription
	kind    string
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

func (g *Gateway) Stream(ctx context.Context, path string, fn func(doc docstore.Document)) (*Stream, error) {
	sub, err := g.Observe(ctx, path)
	if err != nil {
		return nil, err
	}

	s := &Stream{
		sub:  sub,
		kind: RecordKind(path),
		done: make(chan struct{}),
	}
	observability.ActiveSubscriptions.WithLabelValues(s.kind).Inc()

	go func() {
		defer close(s.done)
		for doc := range sub.Updates() {
			if s.stopped.Load() {
				return
			}
			fn(doc)
		}
	}()
	return s, nil
}

// Close stops delivery. A callback already running when Close is called may
// still finish; no new one starts afterwards.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		s.stopped.Store(true)
		err = s.sub.Close()
		observability.ActiveSubscriptions.WithLabelValues(s.kind).Dec()
	})
	return err
}

// Done is closed once the delivery goroutine has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}
