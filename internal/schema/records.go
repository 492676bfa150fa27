package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

const (
	RecordConversation = "conversation"
	RecordMessage      = "message"
	RecordUser         = "user"
	RecordProfile      = "profile"
)

const UsersPath = "/users"

func ProfilePath(participantID string) string {
	return docstore.Join(participantID)
}

func ConversationsPath(participantID string) string {
	return docstore.Join(participantID, "conversations")
}

func MessagesPath(conversationID string) string {
	return docstore.Join(conversationID, "messages")
}

// FormatTime renders timestamps the way they are stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return t.UTC(), nil
}

type latestRecord struct {
	Date    *string `json:"date"`
	Message *string `json:"message"`
	IsRead  *bool   `json:"is_read"`
}

type conversationRecord struct {
	ID             *string       `json:"id"`
	OtherUserEmail *string       `json:"other_user_email"`
	OtherUserName  *string       `json:"other_user_name"`
	LatestMessage  *latestRecord `json:"latest_message"`
}

type messageRecord struct {
	ID          *string `json:"id"`
	Type        *string `json:"type"`
	Content     *string `json:"content"`
	Date        *string `json:"date"`
	SenderEmail *string `json:"sender_email"`
	IsRead      *bool   `json:"is_read"`
	Name        *string `json:"name"`
}

type userRecord struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type profileRecord struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func required(field string, v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", fmt.Errorf("missing %s", field)
	}
	return *v, nil
}

func optional(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optionalBool(v *bool) bool {
	return v != nil && *v
}

func decodeConversation(raw json.RawMessage) (domain.ConversationSummary, error) {
	var r conversationRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.ConversationSummary{}, err
	}
	id, err := required("id", r.ID)
	if err != nil {
		return domain.ConversationSummary{}, err
	}
	peer, err := required("other_user_email", r.OtherUserEmail)
	if err != nil {
		return domain.ConversationSummary{}, err
	}
	if r.LatestMessage == nil {
		return domain.ConversationSummary{}, errors.New("missing latest_message")
	}
	date, err := required("latest_message.date", r.LatestMessage.Date)
	if err != nil {
		return domain.ConversationSummary{}, err
	}
	ts, err := parseTime(date)
	if err != nil {
		return domain.ConversationSummary{}, err
	}
	if r.LatestMessage.Message == nil {
		return domain.ConversationSummary{}, errors.New("missing latest_message.message")
	}

	return domain.ConversationSummary{
		ConversationID:  id,
		PeerID:          peer,
		PeerDisplayName: optional(r.OtherUserName),
		LatestMessage: domain.LatestMessage{
			Timestamp:   ts,
			PreviewText: *r.LatestMessage.Message,
			IsRead:      optionalBool(r.LatestMessage.IsRead),
		},
	}, nil
}

type conversationWire struct {
	ID             string     `json:"id"`
	OtherUserEmail string     `json:"other_user_email"`
	OtherUserName  string     `json:"other_user_name"`
	LatestMessage  latestWire `json:"latest_message"`
}

type latestWire struct {
	Date    string `json:"date"`
	Message string `json:"message"`
	IsRead  bool   `json:"is_read"`
}

func encodeConversation(s domain.ConversationSummary) any {
	return conversationWire{
		ID:             s.ConversationID,
		OtherUserEmail: s.PeerID,
		OtherUserName:  s.PeerDisplayName,
		LatestMessage: latestWire{
			Date:    FormatTime(s.LatestMessage.Timestamp),
			Message: s.LatestMessage.PreviewText,
			IsRead:  s.LatestMessage.IsRead,
		},
	}
}

func decodeMessage(raw json.RawMessage) (domain.Message, error) {
	var r messageRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.Message{}, err
	}
	id, err := required("id", r.ID)
	if err != nil {
		return domain.Message{}, err
	}
	kindStr, err := required("type", r.Type)
	if err != nil {
		return domain.Message{}, err
	}
	kind := domain.MessageKind(kindStr)
	if !kind.Known() {
		return domain.Message{}, fmt.Errorf("unknown type %q", kindStr)
	}
	date, err := required("date", r.Date)
	if err != nil {
		return domain.Message{}, err
	}
	sentAt, err := parseTime(date)
	if err != nil {
		return domain.Message{}, err
	}
	sender, err := required("sender_email", r.SenderEmail)
	if err != nil {
		return domain.Message{}, err
	}
	if kind.Supported() && r.Content == nil {
		return domain.Message{}, errors.New("missing content")
	}

	body := optional(r.Content)
	if !kind.Supported() {
		body = ""
	}
	return domain.Message{
		ID:                id,
		SenderID:          sender,
		SenderDisplayName: optional(r.Name),
		Body:              body,
		SentAt:            sentAt,
		Kind:              kind,
		IsRead:            optionalBool(r.IsRead),
	}, nil
}

type messageWire struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Date        string `json:"date"`
	SenderEmail string `json:"sender_email"`
	IsRead      bool   `json:"is_read"`
	Name        string `json:"name"`
}

func encodeMessage(m domain.Message) any {
	body := m.Body
	if !m.Kind.Supported() {
		body = ""
	}
	return messageWire{
		ID:          m.ID,
		Type:        string(m.Kind),
		Content:     body,
		Date:        FormatTime(m.SentAt),
		SenderEmail: m.SenderID,
		IsRead:      m.IsRead,
		Name:        m.SenderDisplayName,
	}
}

func decodeUser(raw json.RawMessage) (domain.DirectoryEntry, error) {
	var r userRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.DirectoryEntry{}, err
	}
	email, err := required("email", r.Email)
	if err != nil {
		return domain.DirectoryEntry{}, err
	}
	return domain.DirectoryEntry{Name: optional(r.Name), Email: email}, nil
}

type userWire struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func encodeUser(e domain.DirectoryEntry) any {
	return userWire{Name: e.Name, Email: e.Email}
}
