package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageError(t *testing.T) {
	t.Run("nil_stays_nil", func(t *testing.T) {
		assert.NoError(t, NewStorageError("read", "/a", nil))
	})

	t.Run("timeout_is_flagged", func(t *testing.T) {
		err := NewStorageError("read", "/a", fmt.Errorf("wrapped: %w", context.DeadlineExceeded))

		var se *StorageError
		require.ErrorAs(t, err, &se)
		assert.True(t, se.Timeout)
		assert.True(t, se.Retryable())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("does_not_double_wrap", func(t *testing.T) {
		inner := NewStorageError("write", "/a", errors.New("boom"))
		outer := NewStorageError("read", "/b", fmt.Errorf("ctx: %w", inner))

		var se *StorageError
		require.ErrorAs(t, outer, &se)
		assert.Equal(t, "write", se.Op)
	})
}

func TestPartialSendError(t *testing.T) {
	storageErr := NewStorageError("write", "/bob-x-com/conversations", errors.New("unavailable"))
	orphan := &OrphanedConversationError{ParticipantID: "bob-x-com", ConversationID: "c1"}

	err := &PartialSendError{
		ConversationID: "c1",
		MessageID:      "m1",
		Steps: map[Step]StepOutcome{
			StepLogAppend:      {Status: StepSucceeded},
			StepSenderIndex:    {Status: StepFailed, Err: storageErr},
			StepRecipientIndex: {Status: StepFailed, Err: orphan},
		},
	}

	assert.True(t, err.Succeeded(StepLogAppend))
	assert.False(t, err.Succeeded(StepSenderIndex))
	assert.Equal(t, []Step{StepSenderIndex, StepRecipientIndex}, err.Pending())
	assert.True(t, err.RecipientUnaware())
	assert.True(t, IsRetryable(err))

	var got *OrphanedConversationError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "c1", got.ConversationID)
	assert.Contains(t, err.Error(), "sender_index failed")
}

func TestMessageValidate(t *testing.T) {
	base := Message{ID: "m1", SenderID: "ann-x-com", Body: "hi", Kind: KindText}

	tests := []struct {
		name    string
		mutate  func(m *Message)
		wantErr error
	}{
		{name: "valid", mutate: func(m *Message) {}},
		{name: "missing_id", mutate: func(m *Message) { m.ID = "" }, wantErr: ErrInvalidMessage},
		{name: "empty_text", mutate: func(m *Message) { m.Body = "  " }, wantErr: ErrInvalidMessage},
		{name: "unknown_kind", mutate: func(m *Message) { m.Kind = "sticker" }, wantErr: ErrInvalidMessage},
		{name: "photo_without_body", mutate: func(m *Message) { m.Kind = KindPhoto; m.Body = "" }},
		{name: "too_large", mutate: func(m *Message) { m.Body = string(make([]byte, MaxBodySize+1)) + "x" }, wantErr: ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
