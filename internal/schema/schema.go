// Package schema maps the stored document layout to domain values. Reads are
// validated element by element; anything that does not match the expected
// record shape is skipped and reported instead of failing the read.
package schema

import (
	"encoding/json"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

type (
	ConversationList = List[domain.ConversationSummary]
	MessageList      = List[domain.Message]
	DirectoryList    = List[domain.DirectoryEntry]
)

func DecodeConversations(value json.RawMessage) (*ConversationList, domain.DecodeReport) {
	l, skipped := decodeList(RecordConversation, value, decodeConversation, encodeConversation)
	return l, domain.DecodeReport{Skipped: skipped}
}

// DecodeMessages also reports messages whose kind carries no payload here.
func DecodeMessages(value json.RawMessage) (*MessageList, domain.DecodeReport) {
	l, skipped := decodeList(RecordMessage, value, decodeMessage, encodeMessage)
	report := domain.DecodeReport{Skipped: skipped}
	for _, e := range l.entries {
		if e.val != nil && !e.val.Kind.Supported() {
			report.Unsupported = append(report.Unsupported, domain.UnsupportedKind{
				Index:     e.index,
				MessageID: e.val.ID,
				Kind:      e.val.Kind,
			})
		}
	}
	return l, report
}

func DecodeDirectory(value json.RawMessage) (*DirectoryList, domain.DecodeReport) {
	l, skipped := decodeList(RecordUser, value, decodeUser, encodeUser)
	return l, domain.DecodeReport{Skipped: skipped}
}

func DecodeProfile(value json.RawMessage) (domain.Profile, error) {
	var r profileRecord
	if err := json.Unmarshal(value, &r); err != nil {
		return domain.Profile{}, domain.DecodeError{Record: RecordProfile, Reason: err.Error()}
	}
	return domain.Profile{FirstName: optional(r.FirstName), LastName: optional(r.LastName)}, nil
}

func EncodeProfile(p domain.Profile) (json.RawMessage, error) {
	return json.Marshal(map[string]string{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
	})
}
