package pebblestore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	doc, err := s.Read(ctx, "/ann-x-com/conversations")
	require.NoError(t, err)
	assert.False(t, doc.Exists())

	rev, err := s.Write(ctx, "/ann-x-com/conversations", json.RawMessage(`[]`), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)

	_, err = s.Write(ctx, "/ann-x-com/conversations", json.RawMessage(`[{}]`), 0)
	assert.ErrorIs(t, err, docstore.ErrConflict)

	rev, err = s.Write(ctx, "/ann-x-com/conversations", json.RawMessage(`[{"id":"c1"}]`), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rev)

	doc, err = s.Read(ctx, "/ann-x-com/conversations")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), doc.Revision)
	assert.JSONEq(t, `[{"id":"c1"}]`, string(doc.Value))
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")

	s, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	_, err = s.Write(ctx, "/users", json.RawMessage(`[{"name":"Ann","email":"ann@x.com"}]`), 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	doc, err := s.Read(ctx, "/users")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), doc.Revision)
}

func TestStoreObserve(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	sub, err := s.Observe(ctx, "/c1/messages")
	require.NoError(t, err)
	defer sub.Close()

	first := <-sub.Updates()
	assert.False(t, first.Exists())

	_, err = s.Write(ctx, "/c1/messages", json.RawMessage(`[]`), 0)
	require.NoError(t, err)

	select {
	case doc := <-sub.Updates():
		assert.Equal(t, uint64(1), doc.Revision)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestStoreClosed(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Read(context.Background(), "/a")
	assert.ErrorIs(t, err, docstore.ErrClosed)
}
