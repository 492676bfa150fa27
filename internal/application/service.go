package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/events"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
)

type MessageLog interface {
	Append(ctx context.Context, conversationID string, msg domain.Message) error
	ListAll(ctx context.Context, conversationID string) ([]domain.Message, domain.DecodeReport, error)
	Subscribe(ctx context.Context, conversationID string, onChange func([]domain.Message, domain.DecodeReport)) (domain.Subscription, error)
}

type ConversationIndex interface {
	ListConversations(ctx context.Context, participantID string) ([]domain.ConversationSummary, domain.DecodeReport, error)
	UpsertSummary(ctx context.Context, participantID string, summary domain.ConversationSummary) error
	UpdateLatest(ctx context.Context, participantID, conversationID string, latest domain.LatestMessage) error
	MarkRead(ctx context.Context, participantID, conversationID string) error
	Subscribe(ctx context.Context, participantID string, onChange func([]domain.ConversationSummary, domain.DecodeReport)) (domain.Subscription, error)
}

type Directory interface {
	Register(ctx context.Context, p identity.Participant, profile domain.Profile) error
	List(ctx context.Context) ([]domain.DirectoryEntry, domain.DecodeReport, error)
	Exists(ctx context.Context, email string) (bool, error)
	DisplayName(ctx context.Context, email string) (string, error)
}

// Service coordinates the message log and both participants' indexes. It
// holds no conversation state of its own; every operation is safe to repeat.
type Service struct {
	messages  MessageLog
	index     ConversationIndex
	directory Directory
	events    *events.Emitter
	log       *zap.Logger
	now       func() time.Time
}

func New(
	messages MessageLog,
	index ConversationIndex,
	directory Directory,
	emitter *events.Emitter,
	log *zap.Logger,
) *Service {
	return &Service{
		messages:  messages,
		index:     index,
		directory: directory,
		events:    emitter,
		log:       log,
		now:       time.Now,
	}
}

func requireIdentity(p identity.Participant, role string) error {
	if p.IsZero() {
		return &domain.IdentityError{Reason: role + " identity is missing"}
	}
	return nil
}
