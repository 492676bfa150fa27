package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxBodySize = 5000

type MessageKind string

const (
	KindText           MessageKind = "text"
	KindAttributedText MessageKind = "attributed_text"
	KindPhoto          MessageKind = "photo"
	KindVideo          MessageKind = "video"
	KindLocation       MessageKind = "location"
	KindEmoji          MessageKind = "emoji"
	KindAudio          MessageKind = "audio"
	KindContact        MessageKind = "contact"
	KindLinkPreview    MessageKind = "link_preview"
	KindCustom         MessageKind = "custom"
)

var knownKinds = map[MessageKind]struct{}{
	KindText: {}, KindAttributedText: {}, KindPhoto: {}, KindVideo: {}, KindLocation: {},
	KindEmoji: {}, KindAudio: {}, KindContact: {}, KindLinkPreview: {}, KindCustom: {},
}

// Known reports whether k is one of the recognised message kinds.
func (k MessageKind) Known() bool {
	_, ok := knownKinds[k]
	return ok
}

// Supported reports whether the kind carries a body. Every other kind is
// stored with an empty body.
func (k MessageKind) Supported() bool {
	return k == KindText
}

type Message struct {
	ID                string
	SenderID          string
	SenderDisplayName string
	Body              string
	SentAt            time.Time
	Kind              MessageKind
	IsRead            bool
}

func NewMessageID() string {
	return uuid.NewString()
}

// Normalize fills defaults for a message about to be sent and drops payloads
// of kinds that cannot carry one.
func (m Message) Normalize(senderID, senderName string, now time.Time) Message {
	if m.ID == "" {
		m.ID = NewMessageID()
	}
	if m.Kind == "" {
		m.Kind = KindText
	}
	if m.SentAt.IsZero() {
		m.SentAt = now
	}
	m.SentAt = m.SentAt.UTC()
	m.SenderID = senderID
	if m.SenderDisplayName == "" {
		m.SenderDisplayName = senderName
	}
	if !m.Kind.Supported() {
		m.Body = ""
	}
	return m
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.ID) == "" || m.SenderID == "" {
		return ErrInvalidMessage
	}
	if !m.Kind.Known() {
		return ErrInvalidMessage
	}
	if m.Kind.Supported() && strings.TrimSpace(m.Body) == "" {
		return ErrInvalidMessage
	}
	if len(m.Body) > MaxBodySize {
		return ErrMessageTooLarge
	}
	return nil
}

// Preview is the text shown in a conversation summary for this message.
func (m Message) Preview() string {
	if !m.Kind.Supported() {
		return ""
	}
	return m.Body
}
