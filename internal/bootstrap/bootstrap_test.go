package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
)

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), "sqlite", "", "", zap.NewNop())
	assert.Error(t, err)
}

func TestServiceOverPebbleSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")
	log := zap.NewNop()

	ann, err := identity.New("ann@x.com", "Ann")
	require.NoError(t, err)
	bob, err := identity.New("bob@x.com", "Bob")
	require.NoError(t, err)

	store, err := OpenStore(ctx, "pebble", dir, "", log)
	require.NoError(t, err)
	svc, _ := NewService(store, Options{Backend: "pebble"}, log)
	cmd := application.SendCommand{Sender: ann, Recipient: bob}
	cmd.Message.Body = "hi"
	res, err := svc.SendMessage(ctx, cmd)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenStore(ctx, "pebble", dir, "", log)
	require.NoError(t, err)
	defer store.Close()
	svc, _ = NewService(store, Options{}, log)

	summaries, _, err := svc.ListConversations(ctx, bob)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, res.ConversationID, summaries[0].ConversationID)
}
