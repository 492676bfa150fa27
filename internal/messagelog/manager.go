// Package messagelog keeps the ordered, append-only message history shared by
// the two participants of a conversation.
package messagelog

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/schema"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/storage"
)

type Manager struct {
	store *storage.Gateway
	log   *zap.Logger
}

func New(store *storage.Gateway, log *zap.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// Append adds msg at the end of the log, creating the log if needed.
// Appending a message whose id is already present does nothing.
func (m *Manager) Append(ctx context.Context, conversationID string, msg domain.Message) error {
	if conversationID == "" {
		return domain.ErrInvalidInput
	}

	path := schema.MessagesPath(conversationID)
	return m.store.Mutate(ctx, path, func(doc docstore.Document) (json.RawMessage, error) {
		list, report := schema.DecodeMessages(doc.Value)
		m.noteSkipped(conversationID, report)

		if _, ok := list.Find(func(e domain.Message) bool { return e.ID == msg.ID }); ok {
			m.log.Debug("message already in log",
				zap.String("conversation_id", conversationID),
				zap.String("message_id", msg.ID),
			)
			return nil, storage.ErrNoChange
		}
		list.Append(msg)
		return list.Encode()
	})
}

// ListAll returns the log in insertion order. A log that does not exist yet
// is empty.
func (m *Manager) ListAll(ctx context.Context, conversationID string) ([]domain.Message, domain.DecodeReport, error) {
	if conversationID == "" {
		return nil, domain.DecodeReport{}, domain.ErrInvalidInput
	}

	doc, err := m.store.Read(ctx, schema.MessagesPath(conversationID))
	if err != nil {
		return nil, domain.DecodeReport{}, err
	}
	list, report := schema.DecodeMessages(doc.Value)
	m.noteSkipped(conversationID, report)
	return list.Values(), report, nil
}

// Subscribe calls onChange with the current log and again after every change
// until the returned subscription is closed.
func (m *Manager) Subscribe(
	ctx context.Context,
	conversationID string,
	onChange func([]domain.Message, domain.DecodeReport),
) (domain.Subscription, error) {

	if conversationID == "" {
		return nil, domain.ErrInvalidInput
	}

	stream, err := m.store.Stream(ctx, schema.MessagesPath(conversationID), func(doc docstore.Document) {
		list, report := schema.DecodeMessages(doc.Value)
		m.noteSkipped(conversationID, report)
		onChange(list.Values(), report)
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (m *Manager) noteSkipped(conversationID string, report domain.DecodeReport) {
	if len(report.Skipped) == 0 {
		return
	}
	observability.DecodeSkippedTotal.WithLabelValues(schema.RecordMessage).Add(float64(len(report.Skipped)))
	for _, s := range report.Skipped {
		m.log.Warn("skipped malformed message record",
			zap.String("conversation_id", conversationID),
			zap.Int("index", s.Index),
			zap.String("reason", s.Reason),
		)
	}
}
