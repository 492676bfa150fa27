package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

func TestIndexCache(t *testing.T) {
	addr := os.Getenv("CONVSYNC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CONVSYNC_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := New(addr, time.Minute)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	participant := uuid.NewString()

	_, gen, ok, err := c.Get(ctx, participant)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), gen)

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	want := []domain.ConversationSummary{{
		ConversationID:  "c1",
		PeerID:          "bob-x-com",
		PeerDisplayName: "Bob",
		LatestMessage:   domain.LatestMessage{Timestamp: at, PreviewText: "hi"},
	}}
	require.NoError(t, c.Set(ctx, participant, gen, want))

	got, _, ok, err := c.Get(ctx, participant)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c1", got[0].ConversationID)
	assert.True(t, at.Equal(got[0].LatestMessage.Timestamp))

	require.NoError(t, c.Invalidate(ctx, participant))
	_, next, ok, err := c.Get(ctx, participant)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, gen+1, next)

	// A fill computed before the invalidation stays invisible.
	require.NoError(t, c.Set(ctx, participant, gen, want))
	_, _, ok, err = c.Get(ctx, participant)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, participant, next, want))
	_, _, ok, err = c.Get(ctx, participant)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseGeneration(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    int64
		wantErr bool
	}{
		{"absent", nil, 0, false},
		{"counter", "7", 7, false},
		{"garbage", "seven", 0, true},
		{"unexpected_type", 7, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGeneration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
