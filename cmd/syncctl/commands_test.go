package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/bootstrap"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/transport/wire"
)

// seed opens a pebble store at dir, runs fn against it and closes it again.
func seed(t *testing.T, dir string, fn func(svc *application.Service)) {
	t.Helper()
	store, err := bootstrap.OpenStore(context.Background(), "pebble", dir, "", zap.NewNop())
	require.NoError(t, err)
	svc, _ := bootstrap.NewService(store, bootstrap.Options{}, zap.NewNop())
	fn(svc)
	require.NoError(t, store.Close())
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--pebble-path", dir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func participant(t *testing.T, email, name string) identity.Participant {
	t.Helper()
	p, err := identity.New(email, name)
	require.NoError(t, err)
	return p
}

func TestConversationsAndRepair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	ann := participant(t, "ann@x.com", "Ann")
	bob := participant(t, "bob@x.com", "Bob")

	var convID string
	seed(t, dir, func(svc *application.Service) {
		res, err := svc.SendMessage(context.Background(), application.SendCommand{
			Sender:    ann,
			Recipient: bob,
			Message:   domain.Message{Body: "hi"},
		})
		require.NoError(t, err)
		convID = res.ConversationID
	})

	out, err := run(t, dir, "conversations", "bob@x.com")
	require.NoError(t, err)
	var list wire.ConversationList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, convID, list.Conversations[0].ConversationID)

	out, err = run(t, dir, "messages", convID)
	require.NoError(t, err)
	var msgs wire.MessageList
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	assert.Len(t, msgs.Messages, 1)

	out, err = run(t, dir, "repair", "bob@x.com", "ann@x.com", convID)
	require.NoError(t, err)
	var summary wire.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "Ann", summary.PeerName)
	assert.Equal(t, "hi", summary.LatestMessage.Preview)
}

func TestRepairUnknownConversation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	_, err := run(t, dir, "repair", "bob@x.com", "ann@x.com", "conversation_none")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestUsers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	seed(t, dir, func(svc *application.Service) {
		require.NoError(t, svc.RegisterUser(context.Background(), participant(t, "ann@x.com", ""), domain.Profile{FirstName: "Ann", LastName: "Lee"}))
	})

	out, err := run(t, dir, "users")
	require.NoError(t, err)
	var users wire.UserList
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	assert.Equal(t, []wire.User{{Name: "Ann Lee", Email: "ann@x.com"}}, users.Users)
}

func TestArgumentValidation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	_, err := run(t, dir, "conversations")
	assert.Error(t, err)

	_, err = run(t, dir, "repair", "bob@x.com")
	assert.Error(t, err)
}
