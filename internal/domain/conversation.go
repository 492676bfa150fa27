package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

var conversationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("convsync/conversation"))

// NewConversationID derives the id of a conversation opened by senderID with
// its first message. The same pair always yields the same id.
func NewConversationID(senderID, messageID string) string {
	return "conversation_" + uuid.NewSHA1(conversationNamespace, []byte(senderID+"|"+messageID)).String()
}

type LatestMessage struct {
	Timestamp   time.Time
	PreviewText string
	IsRead      bool
}

func LatestFrom(m Message) LatestMessage {
	return LatestMessage{
		Timestamp:   m.SentAt,
		PreviewText: m.Preview(),
		IsRead:      m.IsRead,
	}
}

// Supersede returns what a summary showing l should show once next arrives,
// and whether that differs from l. An older next is ignored. A next with the
// same timestamp keeps a read flag that is already set.
func (l LatestMessage) Supersede(next LatestMessage) (LatestMessage, bool) {
	if next.Timestamp.Before(l.Timestamp) {
		return l, false
	}
	if next.Timestamp.Equal(l.Timestamp) {
		next.IsRead = next.IsRead || l.IsRead
		if next.PreviewText == l.PreviewText && next.IsRead == l.IsRead {
			return l, false
		}
	}
	return next, true
}

type ConversationSummary struct {
	ConversationID  string
	PeerID          string
	PeerDisplayName string
	LatestMessage   LatestMessage
}

// SortByLatest orders summaries most recent first. Ties keep their stored order.
func SortByLatest(summaries []ConversationSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LatestMessage.Timestamp.After(summaries[j].LatestMessage.Timestamp)
	})
}

// LatestByTimestamp returns the message with the greatest SentAt. When several
// share it the one appended last wins.
func LatestByTimestamp(msgs []Message) (Message, bool) {
	if len(msgs) == 0 {
		return Message{}, false
	}
	latest := msgs[0]
	for _, m := range msgs[1:] {
		if !m.SentAt.Before(latest.SentAt) {
			latest = m
		}
	}
	return latest, true
}
