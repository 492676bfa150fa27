// Package postgres keeps documents in a PostgreSQL table and observes changes
// made by any process through LISTEN/NOTIFY.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/tx"
)

const notifyChannel = "docstore_changes"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	revision   BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Store struct {
	DB       *sql.DB
	tx       tx.Transactor
	hub      *docstore.Hub
	listener *pq.Listener
	log      *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("docstore listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		db.Close()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	lctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		DB:       db,
		tx:       &tx.Manager{DB: db},
		hub:      docstore.NewHub(),
		listener: listener,
		log:      log,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.listen(lctx)
	return s, nil
}

func (s *Store) Read(ctx context.Context, path string) (docstore.Document, error) {
	return s.read(ctx, s.DB, path)
}

type queryable interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) read(ctx context.Context, q queryable, path string) (docstore.Document, error) {
	var (
		value []byte
		rev   int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT value, revision FROM documents WHERE path = $1`, path,
	).Scan(&value, &rev)
	if err == sql.ErrNoRows {
		return docstore.Document{Path: path}, nil
	}
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{Path: path, Value: value, Revision: uint64(rev)}, nil
}

func (s *Store) Write(ctx context.Context, path string, value json.RawMessage, ifRevision uint64) (uint64, error) {
	if value == nil {
		return 0, docstore.ErrNilValue
	}

	var next int64
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		switch ifRevision {
		case docstore.AnyRevision:
			err = tx.QueryRowContext(ctx, `
				INSERT INTO documents (path, value, revision) VALUES ($1, $2, 1)
				ON CONFLICT (path) DO UPDATE
				SET value = EXCLUDED.value, revision = documents.revision + 1, updated_at = now()
				RETURNING revision`,
				path, string(value),
			).Scan(&next)
		case 0:
			err = tx.QueryRowContext(ctx, `
				INSERT INTO documents (path, value, revision) VALUES ($1, $2, 1)
				ON CONFLICT (path) DO NOTHING
				RETURNING revision`,
				path, string(value),
			).Scan(&next)
		default:
			err = tx.QueryRowContext(ctx, `
				UPDATE documents SET value = $2, revision = revision + 1, updated_at = now()
				WHERE path = $1 AND revision = $3
				RETURNING revision`,
				path, string(value), int64(ifRevision),
			).Scan(&next)
		}
		if err == sql.ErrNoRows {
			cur, rerr := s.read(ctx, tx, path)
			if rerr != nil {
				return rerr
			}
			return &docstore.ConflictError{Path: path, IfRevision: ifRevision, Revision: cur.Revision}
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, path)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.hub.Publish(docstore.Document{Path: path, Value: docstore.Clone(value), Revision: uint64(next)})
	return uint64(next), nil
}

func (s *Store) Observe(ctx context.Context, path string) (docstore.Subscription, error) {
	w, err := s.hub.Watch(ctx, path)
	if err != nil {
		return nil, err
	}
	doc, err := s.Read(ctx, path)
	if err != nil {
		w.Close()
		return nil, err
	}
	w.Offer(doc)
	return w, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	s.cancel()
	<-s.done
	s.hub.Close()
	if err := s.listener.Close(); err != nil && !errors.Is(err, pq.ErrChannelNotOpen) {
		s.log.Warn("close docstore listener", zap.Error(err))
	}
	return s.DB.Close()
}

// listen turns notifications from other writers into hub updates. A nil
// notification means the connection was re-established and every observed
// path is re-read.
func (s *Store) listen(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(90 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-s.listener.Notify:
			if n == nil {
				for _, p := range s.hub.Paths() {
					s.refresh(ctx, p)
				}
				continue
			}
			if s.hub.Watching(n.Extra) {
				s.refresh(ctx, n.Extra)
			}
		case <-ticker.C:
			go s.listener.Ping()
		}
	}
}

func (s *Store) refresh(ctx context.Context, path string) {
	rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	doc, err := s.Read(rctx, path)
	if err != nil {
		s.log.Warn("docstore refresh failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.hub.Publish(doc)
}
