package application

import (
	"context"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
)

func (s *Service) ListConversations(ctx context.Context, p identity.Participant) ([]domain.ConversationSummary, domain.DecodeReport, error) {
	if err := requireIdentity(p, "participant"); err != nil {
		return nil, domain.DecodeReport{}, err
	}
	return s.index.ListConversations(ctx, p.ID)
}

func (s *Service) ListMessages(ctx context.Context, p identity.Participant, conversationID string) ([]domain.Message, domain.DecodeReport, error) {
	if err := requireIdentity(p, "participant"); err != nil {
		return nil, domain.DecodeReport{}, err
	}
	return s.messages.ListAll(ctx, conversationID)
}

func (s *Service) SubscribeConversations(
	ctx context.Context,
	p identity.Participant,
	onChange func([]domain.ConversationSummary, domain.DecodeReport),
) (domain.Subscription, error) {
	if err := requireIdentity(p, "participant"); err != nil {
		return nil, err
	}
	return s.index.Subscribe(ctx, p.ID, onChange)
}

func (s *Service) SubscribeMessages(
	ctx context.Context,
	p identity.Participant,
	conversationID string,
	onChange func([]domain.Message, domain.DecodeReport),
) (domain.Subscription, error) {
	if err := requireIdentity(p, "participant"); err != nil {
		return nil, err
	}
	return s.messages.Subscribe(ctx, conversationID, onChange)
}

// MarkRead flags the latest message in the participant's own summary as read.
func (s *Service) MarkRead(ctx context.Context, p identity.Participant, conversationID string) error {
	if err := requireIdentity(p, "participant"); err != nil {
		return err
	}
	return s.index.MarkRead(ctx, p.ID, conversationID)
}
