package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConversationID(t *testing.T) {
	a := NewConversationID("ann-x-com", "m1")

	assert.Equal(t, a, NewConversationID("ann-x-com", "m1"))
	assert.NotEqual(t, a, NewConversationID("ann-x-com", "m2"))
	assert.NotEqual(t, a, NewConversationID("bob-x-com", "m1"))
	assert.Contains(t, a, "conversation_")
}

func TestSortByLatest(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	summaries := []ConversationSummary{
		{ConversationID: "old", LatestMessage: LatestMessage{Timestamp: t0}},
		{ConversationID: "new", LatestMessage: LatestMessage{Timestamp: t0.Add(time.Hour)}},
		{ConversationID: "mid", LatestMessage: LatestMessage{Timestamp: t0.Add(time.Minute)}},
	}

	SortByLatest(summaries)

	assert.Equal(t, "new", summaries[0].ConversationID)
	assert.Equal(t, "mid", summaries[1].ConversationID)
	assert.Equal(t, "old", summaries[2].ConversationID)
}

func TestLatestByTimestamp(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := LatestByTimestamp(nil)
	assert.False(t, ok)

	// arrival order differs from timestamp order
	msgs := []Message{
		{ID: "b", SentAt: t0.Add(2 * time.Second)},
		{ID: "a", SentAt: t0.Add(time.Second)},
	}
	latest, ok := LatestByTimestamp(msgs)
	assert.True(t, ok)
	assert.Equal(t, "b", latest.ID)
}

func TestMessageNormalize(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	m := Message{Kind: KindPhoto, Body: "binary"}.Normalize("ann-x-com", "Ann", now)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "ann-x-com", m.SenderID)
	assert.Equal(t, "Ann", m.SenderDisplayName)
	assert.Empty(t, m.Body)
	assert.Equal(t, time.UTC, m.SentAt.Location())
	assert.Equal(t, "", m.Preview())
}

func TestLatestMessageSupersede(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	read := LatestMessage{Timestamp: t0, PreviewText: "hi", IsRead: true}

	tests := []struct {
		name        string
		current     LatestMessage
		next        LatestMessage
		want        LatestMessage
		wantChanged bool
	}{
		{
			name:        "newer_replaces",
			current:     read,
			next:        LatestMessage{Timestamp: t0.Add(time.Second), PreviewText: "yo"},
			want:        LatestMessage{Timestamp: t0.Add(time.Second), PreviewText: "yo"},
			wantChanged: true,
		},
		{
			name:    "older_ignored",
			current: read,
			next:    LatestMessage{Timestamp: t0.Add(-time.Second), PreviewText: "old"},
			want:    read,
		},
		{
			name:    "same_message_stays_read",
			current: read,
			next:    LatestMessage{Timestamp: t0, PreviewText: "hi"},
			want:    read,
		},
		{
			name:        "same_message_marked_read",
			current:     LatestMessage{Timestamp: t0, PreviewText: "hi"},
			next:        read,
			want:        read,
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := tt.current.Supersede(tt.next)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}
