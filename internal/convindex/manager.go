// Package convindex maintains each participant's conversation index: one
// summary per conversation showing the peer and the latest message.
package convindex

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

// Cache holds decoded indexes between reads. A miss returns ok == false.
// Get also reports the participant's generation, which Invalidate advances;
// Set stores an index under the generation observed before it was read, and
// an entry stored under an older generation is never served.
type Cache interface {
	Get(ctx context.Context, participantID string) (summaries []domain.ConversationSummary, gen int64, ok bool, err error)
	Set(ctx context.Context, participantID string, gen int64, summaries []domain.ConversationSummary) error
	Invalidate(ctx context.Context, participantID string) error
}

type Manager struct {
	store *storage.Gateway
	cache Cache
	log   *zap.Logger
}

type Option func(*Manager)

func WithCache(c Cache) Option {
	return func(m *Manager) { m.cache = c }
}

func New(store *storage.Gateway, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{store: store, log: log}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ListConversations returns the participant's index, most recent first.
func (m *Manager) ListConversations(ctx context.Context, participantID string) ([]domain.ConversationSummary, domain.DecodeReport, error) {
	if participantID == "" {
		return nil, domain.DecodeReport{}, &domain.IdentityError{Reason: "participant id is empty"}
	}

	cacheable := false
	var gen int64
	if m.cache != nil {
		cached, g, ok, err := m.cache.Get(ctx, participantID)
		switch {
		case err != nil:
			m.log.Warn("index cache read failed", zap.String("participant_id", participantID), zap.Error(err))
		case ok:
			domain.SortByLatest(cached)
			return cached, domain.DecodeReport{}, nil
		default:
			cacheable, gen = true, g
		}
	}

	doc, err := m.store.Read(ctx, schema.ConversationsPath(participantID))
	if err != nil {
		return nil, domain.DecodeReport{}, err
	}
	summaries, report := m.decode(participantID, doc)

	if cacheable && len(report.Skipped) == 0 {
		if err := m.cache.Set(ctx, participantID, gen, summaries); err != nil {
			m.log.Warn("index cache write failed", zap.String("participant_id", participantID), zap.Error(err))
		}
	}
	return summaries, report, nil
}

// UpsertSummary replaces the latest message of an existing summary with the
// same conversation id, or appends summary when there is none. A latest
// message older than the stored one is ignored so concurrent senders converge
// on the newest message, and rewriting the same message keeps it read.
func (m *Manager) UpsertSummary(ctx context.Context, participantID string, summary domain.ConversationSummary) error {
	if participantID == "" {
		return &domain.IdentityError{Reason: "participant id is empty"}
	}
	if summary.ConversationID == "" || summary.PeerID == "" {
		return domain.ErrInvalidInput
	}

	err := m.mutate(ctx, participantID, func(list *schema.ConversationList) error {
		changed := false
		found := list.Update(matchID(summary.ConversationID), func(s *domain.ConversationSummary) {
			s.LatestMessage, changed = s.LatestMessage.Supersede(summary.LatestMessage)
		})
		if !found {
			list.Append(summary)
			return nil
		}
		if !changed {
			return storage.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.invalidate(ctx, participantID)
	return nil
}

// UpdateLatest replaces the latest message of an existing summary. A missing
// summary is reported as an orphaned conversation.
func (m *Manager) UpdateLatest(ctx context.Context, participantID, conversationID string, latest domain.LatestMessage) error {
	return m.updateExisting(ctx, participantID, conversationID, func(s *domain.ConversationSummary) bool {
		var changed bool
		s.LatestMessage, changed = s.LatestMessage.Supersede(latest)
		return changed
	})
}

// MarkRead flags the latest message of the participant's own summary as read.
func (m *Manager) MarkRead(ctx context.Context, participantID, conversationID string) error {
	return m.updateExisting(ctx, participantID, conversationID, func(s *domain.ConversationSummary) bool {
		if s.LatestMessage.IsRead {
			return false
		}
		s.LatestMessage.IsRead = true
		return true
	})
}

// Subscribe calls onChange with the current index and after every change
// until the returned subscription is closed.
func (m *Manager) Subscribe(
	ctx context.Context,
	participantID string,
	onChange func([]domain.ConversationSummary, domain.DecodeReport),
) (domain.Subscription, error) {

	if participantID == "" {
		return nil, &domain.IdentityError{Reason: "participant id is empty"}
	}

	stream, err := m.store.Stream(ctx, schema.ConversationsPath(participantID), func(doc docstore.Document) {
		onChange(m.decode(participantID, doc))
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (m *Manager) updateExisting(
	ctx context.Context,
	participantID, conversationID string,
	apply func(s *domain.ConversationSummary) bool,
) error {
	if participantID == "" {
		return &domain.IdentityError{Reason: "participant id is empty"}
	}
	if conversationID == "" {
		return domain.ErrInvalidInput
	}

	err := m.mutate(ctx, participantID, func(list *schema.ConversationList) error {
		changed := false
		found := list.Update(matchID(conversationID), func(s *domain.ConversationSummary) {
			changed = apply(s)
		})
		if !found {
			return &domain.OrphanedConversationError{ParticipantID: participantID, ConversationID: conversationID}
		}
		if !changed {
			return storage.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.invalidate(ctx, participantID)
	return nil
}

func (m *Manager) mutate(ctx context.Context, participantID string, fn func(list *schema.ConversationList) error) error {
	return m.store.Mutate(ctx, schema.ConversationsPath(participantID), func(doc docstore.Document) (json.RawMessage, error) {
		list, report := schema.DecodeConversations(doc.Value)
		m.noteSkipped(participantID, report)
		if err := list.Writable(); err != nil {
			return nil, err
		}
		if err := fn(list); err != nil {
			return nil, err
		}
		return list.Encode()
	})
}

func (m *Manager) decode(participantID string, doc docstore.Document) ([]domain.ConversationSummary, domain.DecodeReport) {
	list, report := schema.DecodeConversations(doc.Value)
	m.noteSkipped(participantID, report)
	summaries := list.Values()
	domain.SortByLatest(summaries)
	return summaries, report
}

func (m *Manager) invalidate(ctx context.Context, participantID string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(ctx, participantID); err != nil {
		m.log.Warn("index cache invalidation failed", zap.String("participant_id", participantID), zap.Error(err))
	}
}

func (m *Manager) noteSkipped(participantID string, report domain.DecodeReport) {
	if len(report.Skipped) == 0 {
		return
	}
	observability.DecodeSkippedTotal.WithLabelValues(schema.RecordConversation).Add(float64(len(report.Skipped)))
	for _, s := range report.Skipped {
		m.log.Warn("skipped malformed conversation record",
			zap.String("participant_id", participantID),
			zap.Int("index", s.Index),
			zap.String("reason", s.Reason),
		)
	}
}

func matchID(conversationID string) func(domain.ConversationSummary) bool {
	return func(s domain.ConversationSummary) bool {
		return s.ConversationID == conversationID
	}
}
