package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

// racingStore lets another writer slip in before each of the first n writes.
type racingStore struct {
	*docstore.Memory
	races atomic.Int32
}

func (s *racingStore) Write(ctx context.Context, path string, value json.RawMessage, ifRevision uint64) (uint64, error) {
	if s.races.Add(-1) >= 0 {
		if _, err := s.Memory.Write(ctx, path, json.RawMessage(`"intruder"`), docstore.AnyRevision); err != nil {
			return 0, err
		}
	}
	return s.Memory.Write(ctx, path, value, ifRevision)
}

type slowStore struct {
	*docstore.Memory
}

func (s *slowStore) Read(ctx context.Context, path string) (docstore.Document, error) {
	<-ctx.Done()
	return docstore.Document{}, ctx.Err()
}

func TestMutateRetriesOnConflict(t *testing.T) {
	store := &racingStore{Memory: docstore.NewMemory()}
	store.races.Store(2)
	g := New(store)

	var calls int
	err := g.Mutate(context.Background(), "/a/messages", func(doc docstore.Document) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`"mine"`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	doc, err := store.Memory.Read(context.Background(), "/a/messages")
	require.NoError(t, err)
	assert.JSONEq(t, `"mine"`, string(doc.Value))
}

func TestMutateGivesUpUnderContention(t *testing.T) {
	store := &racingStore{Memory: docstore.NewMemory()}
	store.races.Store(100)
	g := New(store, WithMaxAttempts(3))

	err := g.Mutate(context.Background(), "/a/messages", func(doc docstore.Document) (json.RawMessage, error) {
		return json.RawMessage(`"mine"`), nil
	})

	assert.ErrorIs(t, err, ErrContention)
	assert.True(t, domain.IsRetryable(err))
}

func TestMutatePassesThroughCallbackErrors(t *testing.T) {
	g := New(docstore.NewMemory())
	orphan := &domain.OrphanedConversationError{ParticipantID: "a", ConversationID: "c"}

	err := g.Mutate(context.Background(), "/a/conversations", func(doc docstore.Document) (json.RawMessage, error) {
		return nil, orphan
	})
	assert.Same(t, orphan, err)

	err = g.Mutate(context.Background(), "/a/conversations", func(doc docstore.Document) (json.RawMessage, error) {
		return nil, ErrNoChange
	})
	assert.NoError(t, err)
}

func TestReadTimeoutIsRetryableStorageError(t *testing.T) {
	g := New(&slowStore{Memory: docstore.NewMemory()}, WithTimeout(20*time.Millisecond))

	_, err := g.Read(context.Background(), "/a/conversations")

	var se *domain.StorageError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Timeout)
	assert.True(t, se.Retryable())
}

func TestRecordKind(t *testing.T) {
	assert.Equal(t, "users", RecordKind("/users"))
	assert.Equal(t, "conversations", RecordKind("/a/conversations"))
	assert.Equal(t, "messages", RecordKind("/c/messages"))
	assert.Equal(t, "profile", RecordKind("/a"))
}
