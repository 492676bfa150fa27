package application

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/convindex"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/directory"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/events"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/messagelog"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/storage"
)

var t0 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// faultyStore fails or stalls chosen paths of an in-memory store.
type faultyStore struct {
	*docstore.Memory

	mu         sync.Mutex
	failWrites map[string]error
	stallReads map[string]bool
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		Memory:     docstore.NewMemory(),
		failWrites: make(map[string]error),
		stallReads: make(map[string]bool),
	}
}

func (f *faultyStore) failWrite(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failWrites, path)
		return
	}
	f.failWrites[path] = err
}

func (f *faultyStore) stallRead(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stallReads[path] = true
}

func (f *faultyStore) Read(ctx context.Context, path string) (docstore.Document, error) {
	f.mu.Lock()
	stall := f.stallReads[path]
	f.mu.Unlock()
	if stall {
		<-ctx.Done()
		return docstore.Document{}, ctx.Err()
	}
	return f.Memory.Read(ctx, path)
}

func (f *faultyStore) Write(ctx context.Context, path string, value json.RawMessage, ifRevision uint64) (uint64, error) {
	f.mu.Lock()
	err := f.failWrites[path]
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return f.Memory.Write(ctx, path, value, ifRevision)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (r *recordingPublisher) Publish(ctx context.Context, key string, value []byte) error {
	env, err := events.Decode(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, env)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc   *Service
	store *faultyStore
	pub   *recordingPublisher
}

func newFixture(t *testing.T, opts ...storage.Option) *fixture {
	t.Helper()
	store := newFaultyStore()
	t.Cleanup(func() { store.Close() })

	gw := storage.New(store, opts...)
	pub := &recordingPublisher{}
	log := zap.NewNop()

	svc := New(
		messagelog.New(gw, log),
		convindex.New(gw, log),
		directory.New(gw, log),
		events.NewEmitter(pub, log),
		log,
	)
	svc.now = func() time.Time { return t0 }
	return &fixture{svc: svc, store: store, pub: pub}
}

func mustParticipant(t *testing.T, email, name string) identity.Participant {
	t.Helper()
	p, err := identity.New(email, name)
	require.NoError(t, err)
	return p
}
