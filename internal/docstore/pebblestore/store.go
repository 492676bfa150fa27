// Package pebblestore keeps documents in a local Pebble database.
package pebblestore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
)

const (
	keyPrefix = "doc:"
	stripes   = 64
)

type Store struct {
	db     *pebble.DB
	hub    *docstore.Hub
	locks  [stripes]sync.Mutex
	closed atomic.Bool
	log    *zap.Logger
}

func Open(path string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	log.Info("opening_pebble_db", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		log.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return &Store{db: db, hub: docstore.NewHub(), log: log}, nil
}

func (s *Store) Read(ctx context.Context, path string) (docstore.Document, error) {
	if err := s.check(ctx); err != nil {
		return docstore.Document{}, err
	}
	return s.get(path)
}

func (s *Store) get(path string) (docstore.Document, error) {
	v, closer, err := s.db.Get(key(path))
	if errors.Is(err, pebble.ErrNotFound) {
		return docstore.Document{Path: path}, nil
	}
	if err != nil {
		return docstore.Document{}, err
	}
	defer closer.Close()

	rev, value, err := decodeEntry(v)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("pebble entry %s: %w", path, err)
	}
	return docstore.Document{Path: path, Value: value, Revision: rev}, nil
}

func (s *Store) Write(ctx context.Context, path string, value json.RawMessage, ifRevision uint64) (uint64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if value == nil {
		return 0, docstore.ErrNilValue
	}

	mu := s.lockFor(path)
	mu.Lock()
	cur, err := s.get(path)
	if err != nil {
		mu.Unlock()
		return 0, err
	}
	if err := docstore.CheckRevision(path, cur.Revision, ifRevision); err != nil {
		mu.Unlock()
		return 0, err
	}
	next := cur.Revision + 1
	if err := s.db.Set(key(path), encodeEntry(next, value), pebble.Sync); err != nil {
		mu.Unlock()
		s.log.Error("pebble_write_failed", zap.String("path", path), zap.Error(err))
		return 0, err
	}
	mu.Unlock()

	s.hub.Publish(docstore.Document{Path: path, Value: docstore.Clone(value), Revision: next})
	return next, nil
}

func (s *Store) Observe(ctx context.Context, path string) (docstore.Subscription, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	w, err := s.hub.Watch(ctx, path)
	if err != nil {
		return nil, err
	}
	doc, err := s.get(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	w.Offer(doc)
	return w, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.check(ctx)
}

func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.hub.Close()
	if err := s.db.Close(); err != nil {
		return err
	}
	s.log.Info("pebble_closed")
	return nil
}

func (s *Store) check(ctx context.Context) error {
	if s.closed.Load() {
		return docstore.ErrClosed
	}
	return ctx.Err()
}

func (s *Store) lockFor(path string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(path))
	return &s.locks[h.Sum32()%stripes]
}

func key(path string) []byte {
	return []byte(keyPrefix + path)
}

// Entries are an 8 byte big endian revision followed by the JSON value.
func encodeEntry(rev uint64, value []byte) []byte {
	out := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(out, rev)
	copy(out[8:], value)
	return out
}

func decodeEntry(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, errors.New("entry too short")
	}
	value := make([]byte, len(b)-8)
	copy(value, b[8:])
	return binary.BigEndian.Uint64(b[:8]), value, nil
}
