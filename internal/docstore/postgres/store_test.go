package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
)

// These tests need a reachable database and are skipped otherwise.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("CONVSYNC_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CONVSYNC_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Open(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreConditionalWrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	path := docstore.Join(uuid.NewString(), "conversations")

	rev, err := s.Write(ctx, path, json.RawMessage(`[]`), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)

	_, err = s.Write(ctx, path, json.RawMessage(`[1]`), 0)
	assert.ErrorIs(t, err, docstore.ErrConflict)

	_, err = s.Write(ctx, path, json.RawMessage(`[1]`), 5)
	assert.ErrorIs(t, err, docstore.ErrConflict)

	rev, err = s.Write(ctx, path, json.RawMessage(`[1]`), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rev)

	rev, err = s.Write(ctx, path, json.RawMessage(`[2]`), docstore.AnyRevision)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rev)
}

func TestStoreObserveOtherWriter(t *testing.T) {
	reader := openTestStore(t)
	writer := openTestStore(t)
	ctx := context.Background()
	path := docstore.Join(uuid.NewString(), "messages")

	sub, err := reader.Observe(ctx, path)
	require.NoError(t, err)
	defer sub.Close()
	<-sub.Updates()

	_, err = writer.Write(ctx, path, json.RawMessage(`[]`), 0)
	require.NoError(t, err)

	select {
	case doc := <-sub.Updates():
		assert.Equal(t, uint64(1), doc.Revision)
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}
}
